// Package redisstore keeps collection snapshots in Redis so several console
// processes can share one state.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/garyjia/asset-console/internal/application/port"
)

// DefaultNamespace prefixes every key written by the console
const DefaultNamespace = "asset-console"

// Config holds Redis connection settings
type Config struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// Store implements port.Store with one string value per collection key
type Store struct {
	rdb       *redis.Client
	namespace string
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewWithClient(rdb, cfg.Namespace), nil
}

// NewWithClient wraps an existing client
func NewWithClient(rdb *redis.Client, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{rdb: rdb, namespace: namespace}
}

// Key returns the namespaced Redis key for a collection key
func (s *Store) Key(key string) string {
	return s.namespace + ":snapshot:" + key
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", port.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the client
func (s *Store) Close() error {
	return s.rdb.Close()
}
