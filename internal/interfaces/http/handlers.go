package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/application/service"
	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/module"
	"github.com/garyjia/asset-console/internal/domain/workflow"
	"github.com/garyjia/asset-console/internal/infrastructure/export"
)

// ActorHeader carries the identity recorded in workflow logs
const ActorHeader = "X-Actor"

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps   Dependencies
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, logger Logger) *Handlers {
	return &Handlers{deps: deps, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// ModuleResponse describes one routable module
type ModuleResponse struct {
	Code       string `json:"code"`
	ModuleName string `json:"moduleName"`
	Label      string `json:"label"`
	StoreKey   string `json:"storeKey"`
}

// ActionRequest is the body of POST .../actions
type ActionRequest struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
}

// ActionResponse is the outcome of a workflow action
type ActionResponse struct {
	Record     interface{} `json:"record"`
	Status     string      `json:"approvalStatus"`
	Tier       int         `json:"currentTier"`
	DueDate    string      `json:"dueDate,omitempty"`
	ConfigID   string      `json:"configId,omitempty"`
	Diagnostic string      `json:"diagnostic,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: h.deps.Clock().UTC().Format(time.RFC3339),
	}

	code := http.StatusOK
	if h.deps.Health != nil {
		components, ok := h.deps.Health(c.Request.Context())
		response.Components = components
		if !ok {
			response.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, Response{
		Success: code == http.StatusOK,
		Data:    response,
	})
}

// ListModules handles GET /api/modules
func (h *Handlers) ListModules(c *gin.Context) {
	routes := h.deps.Router.Routes()
	out := make([]ModuleResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, ModuleResponse{
			Code:       r.Code.String(),
			ModuleName: r.ModuleName,
			Label:      h.deps.Translator.Translate(r.Code.LabelKey()),
			StoreKey:   r.Repository.Key(),
		})
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: out})
}

// Inbox handles GET /api/inbox?approver=
func (h *Handlers) Inbox(c *gin.Context) {
	items := h.deps.Workflow.Inbox(c.Query("approver"))
	if items == nil {
		items = []service.PendingItem{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}

// ListRecords handles GET /api/modules/:code/records
func (h *Handlers) ListRecords(c *gin.Context) {
	code, ok := h.moduleParam(c)
	if !ok {
		return
	}
	records, err := h.deps.Records.List(code)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// GetRecord handles GET /api/modules/:code/records/:id
func (h *Handlers) GetRecord(c *gin.Context) {
	code, ok := h.moduleParam(c)
	if !ok {
		return
	}
	record, err := h.deps.Records.Get(code, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

// CreateRecord handles POST /api/modules/:code/records
func (h *Handlers) CreateRecord(c *gin.Context) {
	code, ok := h.moduleParam(c)
	if !ok {
		return
	}
	body, ok := h.body(c)
	if !ok {
		return
	}
	_, record, err := h.deps.Records.Create(c.Request.Context(), code, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: record})
}

// PatchRecord handles PATCH /api/modules/:code/records/:id
func (h *Handlers) PatchRecord(c *gin.Context) {
	code, ok := h.moduleParam(c)
	if !ok {
		return
	}
	body, ok := h.body(c)
	if !ok {
		return
	}
	record, err := h.deps.Records.Patch(c.Request.Context(), code, c.Param("id"), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

// DeleteRecord handles DELETE /api/modules/:code/records/:id
func (h *Handlers) DeleteRecord(c *gin.Context) {
	code, ok := h.moduleParam(c)
	if !ok {
		return
	}
	removed, err := h.deps.Records.Delete(c.Request.Context(), code, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !removed {
		h.fail(c, fmt.Errorf("%w: %s", port.ErrRecordNotFound, c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// Act handles POST /api/modules/:code/records/:id/actions
func (h *Handlers) Act(c *gin.Context) {
	code, ok := h.moduleParam(c)
	if !ok {
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	action, err := workflow.ParseAction(req.Action)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.deps.Workflow.Act(c.Request.Context(), service.ActionRequest{
		Module:   code,
		RecordID: c.Param("id"),
		Action:   action,
		Comment:  req.Comment,
		Actor:    c.GetHeader(ActorHeader),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := ActionResponse{
		Record:   result.Record,
		Status:   result.Decision.NextStatus,
		Tier:     result.Decision.NextTier,
		DueDate:  result.Decision.DueDate,
		ConfigID: result.ConfigID,
	}
	if result.Decision.Anomaly != nil {
		resp.Diagnostic = result.Decision.Anomaly.Error()
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// Export handles GET /api/modules/:code/export
func (h *Handlers) Export(c *gin.Context) {
	code, ok := h.moduleParam(c)
	if !ok {
		return
	}
	route, err := h.deps.Router.Resolve(code)
	if err != nil {
		h.fail(c, err)
		return
	}

	f, filename, err := export.Workbook(code.String(), route.Repository, h.deps.Clock())
	if err != nil {
		h.logger.Error("Failed to build export", "module", code, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "export failed"})
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Failed to write export", "module", code, "error", err)
	}
}

// ListConfigs handles GET /api/approval-configs
func (h *Handlers) ListConfigs(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.deps.Configs.List()})
}

// GetConfig handles GET /api/approval-configs/:id
func (h *Handlers) GetConfig(c *gin.Context) {
	cfg, err := h.deps.Configs.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// UpsertConfig handles POST /api/approval-configs
func (h *Handlers) UpsertConfig(c *gin.Context) {
	var cfg entity.ApprovalConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	saved, err := h.deps.Configs.Upsert(c.Request.Context(), cfg)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: saved})
}

// DeleteConfig handles DELETE /api/approval-configs/:id
func (h *Handlers) DeleteConfig(c *gin.Context) {
	id := c.Param("id")
	if !h.deps.Configs.Remove(c.Request.Context(), id) {
		h.fail(c, fmt.Errorf("%w: %s", service.ErrConfigNotFound, id))
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// AddTier handles POST /api/approval-configs/:id/tiers
func (h *Handlers) AddTier(c *gin.Context) {
	tier, ok := h.tierBody(c)
	if !ok {
		return
	}
	cfg, err := h.deps.Configs.AddTier(c.Request.Context(), c.Param("id"), tier)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// UpdateTier handles PUT /api/approval-configs/:id/tiers/:level
func (h *Handlers) UpdateTier(c *gin.Context) {
	level, ok := h.levelParam(c)
	if !ok {
		return
	}
	tier, ok := h.tierBody(c)
	if !ok {
		return
	}
	tier.Level = level
	cfg, err := h.deps.Configs.UpdateTier(c.Request.Context(), c.Param("id"), tier)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// RemoveTier handles DELETE /api/approval-configs/:id/tiers/:level
func (h *Handlers) RemoveTier(c *gin.Context) {
	level, ok := h.levelParam(c)
	if !ok {
		return
	}
	cfg, err := h.deps.Configs.RemoveTier(c.Request.Context(), c.Param("id"), level)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// ListMaster handles GET /api/master/:kind
func (h *Handlers) ListMaster(c *gin.Context) {
	repo, ok := h.masterParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: repo.List()})
}

// CreateMaster handles POST /api/master/:kind
func (h *Handlers) CreateMaster(c *gin.Context) {
	repo, ok := h.masterParam(c)
	if !ok {
		return
	}
	body, ok := h.body(c)
	if !ok {
		return
	}
	_, record, err := repo.CreateJSON(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: record})
}

func (h *Handlers) moduleParam(c *gin.Context) (module.Code, bool) {
	code, err := module.Parse(c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return "", false
	}
	return code, true
}

func (h *Handlers) masterParam(c *gin.Context) (port.RecordRepository, bool) {
	repo, ok := h.deps.MasterData[strings.ToLower(c.Param("kind"))]
	if !ok {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "unknown master data set"})
		return nil, false
	}
	return repo, true
}

func (h *Handlers) levelParam(c *gin.Context) (int, bool) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 1 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid tier level"})
		return 0, false
	}
	return level, true
}

func (h *Handlers) tierBody(c *gin.Context) (entity.ApprovalTier, bool) {
	var tier entity.ApprovalTier
	if err := c.ShouldBindJSON(&tier); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return tier, false
	}
	if !tier.ApproverType.IsValid() || strings.TrimSpace(tier.ApproverValue) == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "approverType must be Role or User and approverValue is required"})
		return tier, false
	}
	return tier, true
}

func (h *Handlers) body(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "request body is required"})
		return nil, false
	}
	return body, true
}

// fail maps domain errors onto status codes
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	switch {
	case errors.Is(err, module.ErrUnknownModule):
		h.logger.Error("Unknown module requested", "path", c.Request.URL.Path, "error", err)
	case status >= http.StatusInternalServerError:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrInvalidComment),
		errors.Is(err, workflow.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidConfiguration),
		errors.Is(err, port.ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, port.ErrRecordNotFound),
		errors.Is(err, module.ErrUnknownModule),
		errors.Is(err, service.ErrConfigNotFound),
		errors.Is(err, service.ErrTierNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
