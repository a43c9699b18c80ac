// Package resilient wraps a Store with retries and a circuit breaker so a
// flapping backend degrades to fast failures instead of stalling every write.
package resilient

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/garyjia/asset-console/internal/application/port"
)

// Config tunes retry and breaker behavior
type Config struct {
	Name             string
	Attempts         uint
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration

	// OnStateChange is told the new breaker state, e.g. for a gauge
	OnStateChange func(name, state string)
}

// DefaultConfig returns the settings used by the server
func DefaultConfig() Config {
	return Config{
		Name:             "snapshot-store",
		Attempts:         3,
		BaseDelay:        50 * time.Millisecond,
		MaxDelay:         time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Store decorates another port.Store
type Store struct {
	next   port.Store
	cb     *gobreaker.CircuitBreaker
	cfg    Config
	logger *zap.Logger
}

// New wraps next. Zero fields of cfg fall back to DefaultConfig.
func New(next port.Store, cfg Config, logger *zap.Logger) *Store {
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}

	s := &Store{next: next, cfg: cfg, logger: logger}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Store circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, to.String())
			}
		},
	})
	return s
}

// Load reads through the breaker. A missing key counts as a success.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var notFound error
	res, err := s.cb.Execute(func() (interface{}, error) {
		var value []byte
		err := s.do(ctx, func() error {
			v, err := s.next.Load(ctx, key)
			if errors.Is(err, port.ErrKeyNotFound) {
				notFound = err
				return nil
			}
			value = v
			return err
		})
		return value, err
	})
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}
	return res.([]byte), nil
}

// Save writes through the breaker, retrying transient failures
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.do(ctx, func() error {
			return s.next.Save(ctx, key, value)
		})
	})
	return err
}

// State reports the breaker state, e.g. "closed" or "open"
func (s *Store) State() string {
	return s.cb.State().String()
}

// Ping forwards to the wrapped store when it supports it
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.next.(port.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Store) do(ctx context.Context, fn func() error) error {
	return retry.New(
		retry.Context(ctx),
		retry.Attempts(s.cfg.Attempts),
		retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
			d := s.cfg.BaseDelay << n
			if d <= 0 || d > s.cfg.MaxDelay {
				return s.cfg.MaxDelay
			}
			return d
		}),
	).Do(fn)
}
