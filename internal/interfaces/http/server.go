// Package http provides HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// HealthFunc reports component health and whether the whole is healthy
type HealthFunc func(ctx context.Context) (interface{}, bool)

// Dependencies are the application services the server exposes
type Dependencies struct {
	Workflow   service.WorkflowService
	Records    service.RecordService
	Configs    service.ApprovalConfigStore
	Router     service.ModuleRouter
	Translator port.Translator

	// MasterData maps a path segment such as "buildings" to its collection
	MasterData map[string]port.RecordRepository

	Health  HealthFunc
	Metrics http.Handler
	Clock   func() time.Time
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	deps       Dependencies
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, deps Dependencies, logger Logger) *Server {
	// Set gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Translator == nil {
		deps.Translator = port.TranslatorFunc(func(key string) string { return key })
	}

	server := &Server{
		config: config,
		router: gin.New(),
		deps:   deps,
		logger: logger,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		// Log request details
		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
			"actor", c.GetHeader(ActorHeader),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := NewHandlers(s.deps, s.logger)

	// Health check
	s.router.GET("/health", h.HealthCheck)
	if s.deps.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.deps.Metrics))
	}

	// API routes
	api := s.router.Group("/api")
	{
		api.GET("/modules", h.ListModules)
		api.GET("/inbox", h.Inbox)

		// Records
		api.GET("/modules/:code/records", h.ListRecords)
		api.POST("/modules/:code/records", h.CreateRecord)
		api.GET("/modules/:code/records/:id", h.GetRecord)
		api.PATCH("/modules/:code/records/:id", h.PatchRecord)
		api.DELETE("/modules/:code/records/:id", h.DeleteRecord)
		api.POST("/modules/:code/records/:id/actions", h.Act)
		api.GET("/modules/:code/export", h.Export)

		// Approval configurations
		api.GET("/approval-configs", h.ListConfigs)
		api.POST("/approval-configs", h.UpsertConfig)
		api.GET("/approval-configs/:id", h.GetConfig)
		api.DELETE("/approval-configs/:id", h.DeleteConfig)
		api.POST("/approval-configs/:id/tiers", h.AddTier)
		api.PUT("/approval-configs/:id/tiers/:level", h.UpdateTier)
		api.DELETE("/approval-configs/:id/tiers/:level", h.RemoveTier)

		// Master data
		api.GET("/master/:kind", h.ListMaster)
		api.POST("/master/:kind", h.CreateMaster)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
