// Package container wires the console's components and owns their lifecycle.
package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/asset-console/internal/application/dispatcher"
	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/config"
	"github.com/garyjia/asset-console/internal/domain/event"
	infraLark "github.com/garyjia/asset-console/internal/infrastructure/external/lark"
	"github.com/garyjia/asset-console/internal/infrastructure/metrics"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/memory"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/postgres"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/redisstore"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/resilient"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/asset-console/pkg/database"
)

// StoreBundle is the snapshot store plus the hook that releases it
type StoreBundle struct {
	Store port.Store
	Close func() error
}

// ProvideStore opens the configured backend and wraps it with retries and a
// circuit breaker.
func ProvideStore(ctx context.Context, cfg *config.StoreConfig, m *metrics.Metrics, logger *zap.Logger) (*StoreBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	var (
		inner   port.Store
		closeFn = func() error { return nil }
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, database.Config{Path: cfg.Path, MaxOpenConns: 1}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		inner, closeFn = s, s.Close
	case config.DriverRedis:
		s, err := redisstore.New(ctx, redisstore.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.RedisNamespace,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis store: %w", err)
		}
		inner, closeFn = s, s.Close
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect postgres store: %w", err)
		}
		inner, closeFn = s, s.Close
	case config.DriverMemory:
		inner = memory.NewStore()
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	rc := resilient.Config{Name: cfg.Driver, Attempts: cfg.RetryAttempts}
	if m != nil {
		rc.OnStateChange = m.StoreState
	}
	logger.Info("Snapshot store opened", zap.String("driver", cfg.Driver))
	return &StoreBundle{Store: resilient.New(inner, rc, logger), Close: closeFn}, nil
}

// ProvideDispatcher creates the event dispatcher and subscribes the metrics
// recorder and, when given, the approver notifier.
func ProvideDispatcher(m *metrics.Metrics, notifier *infraLark.ApproverNotifier, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger}))
	if m != nil {
		disp.SubscribeNamed(event.TypeWorkflowDecided, "metrics.decisions", m.HandleDecision)
		disp.SubscribeNamed(event.TypeConfigSaved, "metrics.config_saved", m.HandleConfigChange)
		disp.SubscribeNamed(event.TypeConfigRemoved, "metrics.config_removed", m.HandleConfigChange)
	}
	if notifier != nil {
		disp.SubscribeNamed(event.TypeWorkflowDecided, "lark.approver_notifier", notifier.Handle)
	}
	return disp, nil
}

// ProvideNotifier builds the Lark approver notifier, or nil when Lark is off
func ProvideNotifier(cfg *config.LarkConfig, translator port.Translator, sender port.LarkMessageSender, logger *zap.Logger) *infraLark.ApproverNotifier {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if sender == nil {
		sender = infraLark.NewMessengerFromConfig(infraLark.Config{AppID: cfg.AppID, AppSecret: cfg.AppSecret}, logger)
	}
	return infraLark.NewApproverNotifier(sender, cfg.Recipients, translator, logger)
}
