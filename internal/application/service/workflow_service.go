package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/garyjia/asset-console/internal/application/dispatcher"
	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/event"
	"github.com/garyjia/asset-console/internal/domain/module"
	"github.com/garyjia/asset-console/internal/domain/workflow"
)

// ActionRequest is an Approve, Reject or Revise submitted for one record
type ActionRequest struct {
	Module   module.Code
	RecordID string
	Action   workflow.Action
	Comment  string
	Actor    string
}

// ActionResult is the applied decision and the updated record
type ActionResult struct {
	Module     module.Code       `json:"module"`
	ModuleName string            `json:"moduleName"`
	ConfigID   string            `json:"configId,omitempty"`
	Record     any               `json:"record"`
	Decision   workflow.Decision `json:"-"`
}

// PendingItem is a record waiting on an approver
type PendingItem struct {
	Module      module.Code `json:"module"`
	ModuleName  string      `json:"moduleName"`
	RecordID    string      `json:"recordId"`
	Status      string      `json:"approvalStatus"`
	CurrentTier int         `json:"currentTier"`
	Approver    string      `json:"approver"`
	Since       string      `json:"since,omitempty"`
	DueDate     string      `json:"dueDate,omitempty"`
	Overdue     bool        `json:"overdue"`
}

// WorkflowService is the single entry point for workflow actions
type WorkflowService interface {
	Act(ctx context.Context, req ActionRequest) (*ActionResult, error)

	// Inbox lists records pending on approver, or on anyone when approver is empty
	Inbox(approver string) []PendingItem
}

// WorkflowOption configures the workflow service
type WorkflowOption func(*workflowService)

// WithWorkflowClock sets the clock used for log dates and due dates
func WithWorkflowClock(now func() time.Time) WorkflowOption {
	return func(s *workflowService) { s.now = now }
}

// WithDefaultActor sets the actor recorded when a request carries none
func WithDefaultActor(actor string) WorkflowOption {
	return func(s *workflowService) {
		if actor != "" {
			s.defaultActor = actor
		}
	}
}

type workflowService struct {
	mu           sync.Mutex
	router       ModuleRouter
	configs      ApprovalConfigStore
	events       dispatcher.Dispatcher
	logger       Logger
	now          func() time.Time
	defaultActor string
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	router ModuleRouter,
	configs ApprovalConfigStore,
	events dispatcher.Dispatcher,
	logger Logger,
	opts ...WorkflowOption,
) WorkflowService {
	if logger == nil {
		logger = nopLogger{}
	}
	s := &workflowService{
		router:       router,
		configs:      configs,
		events:       events,
		logger:       logger,
		now:          time.Now,
		defaultActor: entity.DefaultActor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *workflowService) Act(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	if !req.Action.IsValid() {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidAction, req.Action)
	}
	if err := workflow.ValidateComment(req.Action, req.Comment); err != nil {
		return nil, err
	}

	route, err := s.router.Resolve(req.Module)
	if err != nil {
		s.logger.Error("Workflow action for unknown module", "module", req.Module, "record_id", req.RecordID)
		return nil, err
	}

	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = s.defaultActor
	}

	a, err := s.decide(ctx, route, req, actor)
	if err != nil {
		return nil, err
	}

	// handlers may call out to Lark, so they run outside the lock
	s.publish(ctx, route, req, a)
	return a.result, nil
}

// applied is a decision written to its repository
type applied struct {
	result *ActionResult
	prev   string
	cfg    entity.ApprovalConfiguration
	found  bool
}

// decide computes and applies one decision while holding the action lock
func (s *workflowService) decide(ctx context.Context, route Route, req ActionRequest, actor string) (*applied, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := route.Repository.State(req.RecordID)
	if err != nil {
		return nil, err
	}

	in := workflow.Input{
		Action:  req.Action,
		Record:  state.Snapshot(),
		Actor:   actor,
		Comment: req.Comment,
		Today:   s.now(),
	}
	cfg, found := s.configs.FindByModuleName(route.ModuleName)
	if found {
		in.Config = &cfg
	}

	decision, err := workflow.Decide(in)
	if err != nil {
		return nil, err
	}
	if decision.Anomaly != nil {
		s.logger.Warn("Approval chain is malformed",
			"module", route.Code,
			"record_id", req.RecordID,
			"config_id", cfg.ID,
			"error", decision.Anomaly,
		)
	}

	record, err := route.Repository.ApplyWorkflowDecision(ctx, req.RecordID, decision)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Workflow action applied",
		"module", route.Code,
		"record_id", req.RecordID,
		"action", req.Action,
		"status", decision.NextStatus,
		"tier", decision.NextTier,
	)
	return &applied{
		result: &ActionResult{
			Module:     route.Code,
			ModuleName: route.ModuleName,
			ConfigID:   cfg.ID,
			Record:     record,
			Decision:   decision,
		},
		prev:  state.Status,
		cfg:   cfg,
		found: found,
	}, nil
}

func (s *workflowService) publish(ctx context.Context, route Route, req ActionRequest, a *applied) {
	if s.events == nil {
		return
	}
	d := a.result.Decision

	payload := map[string]interface{}{
		event.KeyAction:        req.Action.String(),
		event.KeyActor:         d.LogEntry.Actor,
		event.KeyComment:       req.Comment,
		event.KeyPrevStatus:    a.prev,
		event.KeyStatus:        d.NextStatus,
		event.KeyTier:          d.NextTier,
		event.KeyModuleName:    route.ModuleName,
		event.KeyConfigPresent: a.found,
	}
	if a.found {
		payload[event.KeyConfigID] = a.cfg.ID
	}
	if d.PendingTier != nil {
		payload[event.KeyApprover] = d.PendingTier.ApproverValue
		payload[event.KeyApproverType] = string(d.PendingTier.ApproverType)
		payload[event.KeyDueDate] = d.DueDate
	}
	if d.Anomaly != nil {
		payload[event.KeyAnomaly] = d.Anomaly.Error()
	}

	evt := event.NewEvent(event.TypeWorkflowDecided, route.Code.String(), req.RecordID, payload)
	if err := s.events.Dispatch(ctx, evt); err != nil && !errors.Is(err, dispatcher.ErrClosed) {
		s.logger.Warn("Workflow event handlers failed", "event_id", evt.ID, "error", err)
	}
}

func (s *workflowService) Inbox(approver string) []PendingItem {
	approver = strings.TrimSpace(approver)
	today := s.now().Format(entity.DateLayout)

	var items []PendingItem
	for _, route := range s.router.Routes() {
		cfg, found := s.configs.FindByModuleName(route.ModuleName)
		for _, st := range route.Repository.States() {
			who, pending := workflow.PendingApprover(st.Status)
			if !pending || (approver != "" && !strings.EqualFold(who, approver)) {
				continue
			}

			item := PendingItem{
				Module:      route.Code,
				ModuleName:  route.ModuleName,
				RecordID:    st.ID,
				Status:      st.Status,
				CurrentTier: st.CurrentTier,
				Approver:    who,
			}
			if n := len(st.Workflow); n > 0 {
				item.Since = st.Workflow[n-1].Date
			}
			if found && item.Since != "" {
				item.DueDate = dueDate(cfg, st.CurrentTier, item.Since)
				item.Overdue = item.DueDate != "" && item.DueDate < today
			}
			items = append(items, item)
		}
	}
	return items
}

// dueDate adds the SLA of the tier at level to since; empty if unknown
func dueDate(cfg entity.ApprovalConfiguration, level int, since string) string {
	start, err := time.Parse(entity.DateLayout, since)
	if err != nil {
		return ""
	}
	for _, t := range cfg.Tiers {
		if t.Level == level && t.SLADays > 0 {
			return start.AddDate(0, 0, t.SLADays).Format(entity.DateLayout)
		}
	}
	return ""
}
