package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/asset-console/internal/application/dispatcher"
	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/event"
	"github.com/garyjia/asset-console/internal/domain/module"
)

var (
	// ErrConfigNotFound is returned when no configuration has the requested id
	ErrConfigNotFound = errors.New("approval configuration not found")

	// ErrTierNotFound is returned when a configuration has no tier at a level
	ErrTierNotFound = errors.New("approval tier not found")

	// ErrInvalidConfiguration is returned when an upsert fails validation
	ErrInvalidConfiguration = errors.New("invalid approval configuration")
)

// ApprovalConfigStore holds the configured approval chains
type ApprovalConfigStore interface {
	Load(ctx context.Context) error

	// FindByModuleName returns the first configuration, in insertion order,
	// whose moduleName matches exactly. Branch scope is not considered.
	FindByModuleName(name string) (entity.ApprovalConfiguration, bool)

	List() []entity.ApprovalConfiguration
	Get(id string) (entity.ApprovalConfiguration, error)
	Upsert(ctx context.Context, cfg entity.ApprovalConfiguration) (entity.ApprovalConfiguration, error)
	Remove(ctx context.Context, id string) bool

	AddTier(ctx context.Context, id string, tier entity.ApprovalTier) (entity.ApprovalConfiguration, error)
	UpdateTier(ctx context.Context, id string, tier entity.ApprovalTier) (entity.ApprovalConfiguration, error)
	RemoveTier(ctx context.Context, id string, level int) (entity.ApprovalConfiguration, error)

	// Bootstrap inserts fixtures only when the store is empty
	Bootstrap(ctx context.Context, fixtures []entity.ApprovalConfiguration) (int, error)
}

// ConfigStoreOption configures the approval config store
type ConfigStoreOption func(*approvalConfigStore)

// WithConfigClock sets the clock used for updatedAt stamps
func WithConfigClock(now func() time.Time) ConfigStoreOption {
	return func(s *approvalConfigStore) { s.now = now }
}

// WithConfigIDGenerator replaces the UUID id generator
func WithConfigIDGenerator(fn func() string) ConfigStoreOption {
	return func(s *approvalConfigStore) { s.newID = fn }
}

// WithConfigObserver reports persist outcomes
func WithConfigObserver(obs PersistObserver) ConfigStoreOption {
	return func(s *approvalConfigStore) { s.observer = obs }
}

// WithConfigEvents publishes config.saved and config.removed events
func WithConfigEvents(d dispatcher.Dispatcher) ConfigStoreOption {
	return func(s *approvalConfigStore) { s.events = d }
}

type approvalConfigStore struct {
	mu       sync.RWMutex
	configs  []entity.ApprovalConfiguration
	store    port.Store
	logger   Logger
	now      func() time.Time
	newID    func() string
	observer PersistObserver
	events   dispatcher.Dispatcher
}

// NewApprovalConfigStore creates an empty store persisted under masterApprovalData
func NewApprovalConfigStore(store port.Store, logger Logger, opts ...ConfigStoreOption) ApprovalConfigStore {
	if logger == nil {
		logger = nopLogger{}
	}
	s := &approvalConfigStore{
		configs: []entity.ApprovalConfiguration{},
		store:   store,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *approvalConfigStore) Load(ctx context.Context) error {
	raw, err := s.store.Load(ctx, module.KeyApprovalConfigs)
	if errors.Is(err, port.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load approval configurations: %w", err)
	}

	var configs []entity.ApprovalConfiguration
	if err := json.Unmarshal(raw, &configs); err != nil {
		return fmt.Errorf("decode approval configurations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = make([]entity.ApprovalConfiguration, 0, len(configs))
	for _, c := range configs {
		c = c.Clone()
		c.Tiers = c.SortedTiers()
		s.configs = append(s.configs, c)
	}
	s.logger.Info("Approval configurations loaded", "count", len(s.configs))
	return nil
}

func (s *approvalConfigStore) FindByModuleName(name string) (entity.ApprovalConfiguration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.configs {
		if c.ModuleName == name {
			return c.Clone(), true
		}
	}
	return entity.ApprovalConfiguration{}, false
}

func (s *approvalConfigStore) List() []entity.ApprovalConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.ApprovalConfiguration, len(s.configs))
	for i, c := range s.configs {
		out[i] = c.Clone()
	}
	return out
}

func (s *approvalConfigStore) Get(id string) (entity.ApprovalConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return entity.ApprovalConfiguration{}, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}
	return s.configs[i].Clone(), nil
}

func (s *approvalConfigStore) Upsert(ctx context.Context, cfg entity.ApprovalConfiguration) (entity.ApprovalConfiguration, error) {
	cfg = cfg.Clone()
	cfg.ModuleName = strings.TrimSpace(cfg.ModuleName)
	if cfg.ModuleName == "" {
		return entity.ApprovalConfiguration{}, fmt.Errorf("%w: moduleName is required", ErrInvalidConfiguration)
	}
	cfg.Tiers = cfg.SortedTiers()
	for i, t := range cfg.Tiers {
		if t.Level != i+1 {
			return entity.ApprovalConfiguration{}, fmt.Errorf("%w: tier levels must run 1..%d, found %d at position %d",
				ErrInvalidConfiguration, len(cfg.Tiers), t.Level, i+1)
		}
	}
	if cfg.BranchScope == "" {
		cfg.BranchScope = entity.AllBranches
	}

	s.mu.Lock()
	if cfg.ID == "" {
		cfg.ID = s.newID()
	}
	cfg.UpdatedAt = s.today()

	configs := append([]entity.ApprovalConfiguration{}, s.configs...)
	if i := s.indexOf(cfg.ID); i >= 0 {
		configs[i] = cfg
	} else {
		configs = append(configs, cfg)
	}
	s.configs = configs
	s.persist(ctx)
	s.mu.Unlock()

	s.publish(ctx, event.TypeConfigSaved, cfg)
	return cfg.Clone(), nil
}

func (s *approvalConfigStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.configs[i]
	configs := make([]entity.ApprovalConfiguration, 0, len(s.configs)-1)
	configs = append(configs, s.configs[:i]...)
	s.configs = append(configs, s.configs[i+1:]...)
	s.persist(ctx)
	s.mu.Unlock()

	s.publish(ctx, event.TypeConfigRemoved, removed)
	return true
}

func (s *approvalConfigStore) AddTier(ctx context.Context, id string, tier entity.ApprovalTier) (entity.ApprovalConfiguration, error) {
	return s.editTiers(ctx, id, func(c *entity.ApprovalConfiguration) error {
		tier.Level = len(c.Tiers) + 1
		c.Tiers = append(c.Tiers, tier)
		return nil
	})
}

func (s *approvalConfigStore) UpdateTier(ctx context.Context, id string, tier entity.ApprovalTier) (entity.ApprovalConfiguration, error) {
	return s.editTiers(ctx, id, func(c *entity.ApprovalConfiguration) error {
		for i := range c.Tiers {
			if c.Tiers[i].Level == tier.Level {
				c.Tiers[i] = tier
				return nil
			}
		}
		return fmt.Errorf("%w: %s level %d", ErrTierNotFound, id, tier.Level)
	})
}

func (s *approvalConfigStore) RemoveTier(ctx context.Context, id string, level int) (entity.ApprovalConfiguration, error) {
	return s.editTiers(ctx, id, func(c *entity.ApprovalConfiguration) error {
		for i := range c.Tiers {
			if c.Tiers[i].Level == level {
				c.Tiers = append(c.Tiers[:i:i], c.Tiers[i+1:]...)
				c.Renumber()
				return nil
			}
		}
		return fmt.Errorf("%w: %s level %d", ErrTierNotFound, id, level)
	})
}

func (s *approvalConfigStore) editTiers(ctx context.Context, id string, edit func(*entity.ApprovalConfiguration) error) (entity.ApprovalConfiguration, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return entity.ApprovalConfiguration{}, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}

	cfg := s.configs[i].Clone()
	cfg.Tiers = cfg.SortedTiers()
	if err := edit(&cfg); err != nil {
		s.mu.Unlock()
		return entity.ApprovalConfiguration{}, err
	}
	cfg.UpdatedAt = s.today()

	configs := append([]entity.ApprovalConfiguration{}, s.configs...)
	configs[i] = cfg
	s.configs = configs
	s.persist(ctx)
	s.mu.Unlock()

	s.publish(ctx, event.TypeConfigSaved, cfg)
	return cfg.Clone(), nil
}

func (s *approvalConfigStore) Bootstrap(ctx context.Context, fixtures []entity.ApprovalConfiguration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.configs) > 0 {
		return 0, nil
	}

	configs := make([]entity.ApprovalConfiguration, 0, len(fixtures))
	for _, f := range fixtures {
		f = f.Clone()
		if strings.TrimSpace(f.ModuleName) == "" {
			return 0, fmt.Errorf("%w: fixture without moduleName", ErrInvalidConfiguration)
		}
		if f.ID == "" {
			f.ID = s.newID()
		}
		if f.BranchScope == "" {
			f.BranchScope = entity.AllBranches
		}
		if f.UpdatedAt == "" {
			f.UpdatedAt = s.today()
		}
		f.Renumber()
		configs = append(configs, f)
	}
	s.configs = configs
	s.persist(ctx)
	s.logger.Info("Approval configurations bootstrapped", "count", len(configs))
	return len(configs), nil
}

func (s *approvalConfigStore) indexOf(id string) int {
	for i := range s.configs {
		if s.configs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *approvalConfigStore) today() string {
	return s.now().Format(entity.DateLayout)
}

// persist writes the whole collection; callers hold s.mu
func (s *approvalConfigStore) persist(ctx context.Context) {
	raw, err := json.Marshal(s.configs)
	if err == nil {
		err = s.store.Save(ctx, module.KeyApprovalConfigs, raw)
	}
	if err != nil {
		s.logger.Warn("Failed to persist approval configurations",
			"key", module.KeyApprovalConfigs,
			"error", err,
		)
	}
	if s.observer != nil {
		s.observer.Persisted(module.KeyApprovalConfigs, err)
	}
}

func (s *approvalConfigStore) publish(ctx context.Context, t event.Type, cfg entity.ApprovalConfiguration) {
	if s.events == nil {
		return
	}
	evt := event.NewEvent(t, "", cfg.ID, map[string]interface{}{
		event.KeyConfigID:   cfg.ID,
		event.KeyModuleName: cfg.ModuleName,
		event.KeyTier:       len(cfg.Tiers),
	})
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to publish configuration event", "event_type", t, "error", err)
	}
}
