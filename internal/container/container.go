package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/garyjia/asset-console/internal/application/dispatcher"
	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/application/service"
	"github.com/garyjia/asset-console/internal/config"
	"github.com/garyjia/asset-console/internal/fixtures"
	infraLark "github.com/garyjia/asset-console/internal/infrastructure/external/lark"
	"github.com/garyjia/asset-console/internal/infrastructure/i18n"
	"github.com/garyjia/asset-console/internal/infrastructure/metrics"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/collection"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/resilient"
	"github.com/garyjia/asset-console/internal/infrastructure/worker"
)

// Container is the application state: one repository per module, the
// approval configurations and the services built on them. Components start
// in dependency order and close in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger
	opts   options

	// Infrastructure
	store      port.Store
	closeStore func() error
	registry   *collection.Registry
	catalog    *i18n.Catalog
	metrics    *metrics.Metrics
	promReg    *prometheus.Registry

	// Application
	notifier   *infraLark.ApproverNotifier
	workers    *worker.Manager
	dispatcher dispatcher.Dispatcher
	configs    service.ApprovalConfigStore
	router     service.ModuleRouter
	services   *ServiceBundle
	seeded     int

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Workflow service.WorkflowService
	Records  service.RecordService
	Configs  service.ApprovalConfigStore
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Option customizes construction, mostly for tests and the CLI
type Option func(*options)

type options struct {
	store  port.Store
	sender port.LarkMessageSender
	clock  func() time.Time
}

// WithStore bypasses the configured driver
func WithStore(s port.Store) Option {
	return func(o *options) { o.store = s }
}

// WithMessageSender replaces the Lark SDK messenger
func WithMessageSender(s port.LarkMessageSender) Option {
	return func(o *options) { o.sender = s }
}

// WithClock sets the clock for log dates and due dates
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Container{config: cfg, logger: logger, opts: o}, nil
}

// Start initializes all components:
// 1. Metrics and snapshot store
// 2. Label catalog and event dispatcher
// 3. Module collections, loaded from the store
// 4. Approval configurations, seeded when empty
// 5. Router and services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	// Step 1: Metrics and store
	c.promReg = prometheus.NewRegistry()
	c.metrics = metrics.NewMetrics(c.promReg)
	if err := c.initStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	// Step 2: Catalog and dispatcher
	catalog, err := i18n.Load(c.config.I18n.CatalogPath, c.config.I18n.Locale)
	if err != nil {
		c.closeStoreQuietly()
		return fmt.Errorf("failed to load label catalog: %w", err)
	}
	c.catalog = catalog

	c.notifier = ProvideNotifier(&c.config.Lark, c.catalog, c.opts.sender, c.logger)
	c.dispatcher, err = ProvideDispatcher(c.metrics, c.notifier, c.logger)
	if err != nil {
		c.closeStoreQuietly()
		return err
	}

	// Step 3: Collections
	c.registry = collection.NewRegistry(c.store,
		collection.WithLogger(c.logger),
		collection.WithObserver(c.metrics),
	)
	if err := c.registry.Load(ctx); err != nil {
		c.closeStoreQuietly()
		return fmt.Errorf("failed to load collections: %w", err)
	}

	// Step 4: Approval configurations
	svcLogger := &zapLoggerAdapter{logger: c.logger}
	c.configs = service.NewApprovalConfigStore(c.store, svcLogger,
		service.WithConfigClock(c.opts.clock),
		service.WithConfigObserver(c.metrics),
		service.WithConfigEvents(c.dispatcher),
	)
	if err := c.configs.Load(ctx); err != nil {
		c.closeStoreQuietly()
		return fmt.Errorf("failed to load approval configurations: %w", err)
	}
	c.seeded, err = c.configs.Bootstrap(ctx, fixtures.ApprovalConfigurations())
	if err != nil {
		c.closeStoreQuietly()
		return fmt.Errorf("failed to seed approval configurations: %w", err)
	}

	// Step 5: Router and services
	c.router, err = service.NewModuleRouter(c.registry.Modules)
	if err != nil {
		c.closeStoreQuietly()
		return err
	}
	c.services = &ServiceBundle{
		Workflow: service.NewWorkflowService(c.router, c.configs, c.dispatcher, svcLogger,
			service.WithWorkflowClock(c.opts.clock),
			service.WithDefaultActor(c.config.Workflow.DefaultActor),
		),
		Records: service.NewRecordService(c.router, c.dispatcher, svcLogger),
		Configs: c.configs,
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully",
		zap.String("store", c.config.Store.Driver),
		zap.Int("seeded_configs", c.seeded))
	return nil
}

func (c *Container) initStore(ctx context.Context) error {
	if c.opts.store != nil {
		c.store = resilient.New(c.opts.store, resilient.Config{
			Name:          "injected",
			Attempts:      c.config.Store.RetryAttempts,
			OnStateChange: c.metrics.StoreState,
		}, c.logger)
		c.closeStore = func() error { return nil }
		return nil
	}

	bundle, err := ProvideStore(ctx, &c.config.Store, c.metrics, c.logger)
	if err != nil {
		return err
	}
	c.store, c.closeStore = bundle.Store, bundle.Close
	return nil
}

func (c *Container) closeStoreQuietly() {
	if c.closeStore != nil {
		_ = c.closeStore()
	}
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	// Step 1: Stop background workers
	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}

	// Step 2: Close dispatcher
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	// Step 3: Close store
	if c.closeStore != nil {
		if err := c.closeStore(); err != nil {
			c.logger.Error("Failed to close store", zap.Error(err))
			errs = append(errs, fmt.Errorf("close store: %w", err))
		} else {
			c.logger.Info("Store closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return errors.Join(errs...)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// StartWorkers starts the overdue sweeper when workflow.reminder_interval is
// positive. Only long-running processes call it.
func (c *Container) StartWorkers(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready.Load() {
		return fmt.Errorf("container is not started")
	}
	if c.workers != nil {
		return fmt.Errorf("workers already started")
	}

	c.workers = worker.NewManager(c.logger)
	interval := c.config.Workflow.ReminderInterval
	if interval <= 0 {
		c.logger.Info("Overdue sweeper disabled")
		return nil
	}

	var reminder worker.Reminder
	if c.notifier != nil {
		reminder = c.notifier
	}
	c.workers.Register(worker.NewOverdueSweeper(c.services.Workflow, reminder, c.metrics, interval, c.logger))
	return c.workers.StartAll(ctx)
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, h ComponentHealth) {
		status.Components[name] = h
		if !h.Healthy {
			status.Overall = false
		}
	}

	// Check store
	switch s := c.store.(type) {
	case nil:
		set("store", ComponentHealth{Message: "not initialized"})
	case *resilient.Store:
		msg := fmt.Sprintf("%s, breaker %s", c.config.Store.Driver, s.State())
		if err := s.Ping(ctx); err != nil {
			set("store", ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)})
		} else {
			set("store", ComponentHealth{Healthy: s.State() != "open", Message: msg})
		}
	default:
		set("store", ComponentHealth{Healthy: true})
	}

	// Check dispatcher
	if c.dispatcher != nil {
		set("dispatcher", ComponentHealth{Healthy: true})
	} else {
		set("dispatcher", ComponentHealth{Message: "not initialized"})
	}

	// Check repositories
	if c.router != nil {
		set("repositories", ComponentHealth{Healthy: true, Message: fmt.Sprintf("modules: %d", len(c.router.Routes()))})
	} else {
		set("repositories", ComponentHealth{Message: "not initialized"})
	}

	return status
}

// Getters for accessing container components

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Router returns the module router.
func (c *Container) Router() service.ModuleRouter {
	return c.router
}

// Registry returns every collection, including master data.
func (c *Container) Registry() *collection.Registry {
	return c.registry
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Translator returns the label catalog.
func (c *Container) Translator() port.Translator {
	return c.catalog
}

// Metrics returns the prometheus registry the metrics are registered on.
func (c *Container) Metrics() *prometheus.Registry {
	return c.promReg
}

// Seeded returns how many fixture configurations Start inserted.
func (c *Container) Seeded() int {
	return c.seeded
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// ServiceLogger returns the key-value logger handed to services.
func (c *Container) ServiceLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// Clock returns the clock used for log dates and due dates.
func (c *Container) Clock() func() time.Time {
	return c.opts.clock
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service and dispatcher Logger interfaces.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
