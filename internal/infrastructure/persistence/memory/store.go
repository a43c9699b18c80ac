// Package memory is a process-local Store, used when no durable backend is
// configured and by tests that need to observe every save.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/asset-console/internal/application/port"
)

// Save records a single Store.Save call
type Save struct {
	Key   string
	Value []byte
}

// Store keeps snapshots in a map
type Store struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   []Save
	failErr error
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", port.ErrKeyNotFound, key)
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := append([]byte(nil), value...)
	s.saves = append(s.saves, Save{Key: key, Value: v})
	if s.failErr != nil {
		return s.failErr
	}
	s.data[key] = v
	return nil
}

// FailWith makes every later Save return err; nil restores normal saves
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Saves returns every Save call made for key, in order
func (s *Store) Saves(key string) []Save {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Save
	for _, sv := range s.saves {
		if sv.Key == key {
			out = append(out, sv)
		}
	}
	return out
}

// Put seeds a value without counting it as a save
func (s *Store) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
}
