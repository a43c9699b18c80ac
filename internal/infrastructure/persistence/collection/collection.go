// Package collection keeps one module's records in memory, in insertion
// order, and writes the whole collection to a Store after every change.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/workflow"
)

var (
	// ErrNotFound is returned when no record has the requested id
	ErrNotFound = port.ErrRecordNotFound

	// ErrNotApprovable is returned when a decision targets a master collection
	ErrNotApprovable = errors.New("collection has no approval workflow")

	// ErrInvalidRecord is returned when a JSON payload cannot be decoded
	ErrInvalidRecord = port.ErrInvalidRecord
)

// Observer is told about every persist attempt
type Observer interface {
	Persisted(key string, err error)
}

// Option configures a Collection
type Option func(*options)

type options struct {
	newID    func() string
	observer Observer
	logger   *zap.Logger
}

// WithIDGenerator replaces the default UUID generator
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithObserver reports persist outcomes, e.g. to metrics
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger sets the logger used for persist warnings
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Collection is a keyed, insertion-ordered set of records of one shape
type Collection[T any, PT interface {
	*T
	entity.Record
}] struct {
	mu      sync.RWMutex
	key     string
	items   []T
	store   port.Store
	binding Binding[T]
	opts    options
}

// New creates an empty collection persisted under key
func New[T any, PT interface {
	*T
	entity.Record
}](key string, store port.Store, binding Binding[T], opts ...Option) *Collection[T, PT] {
	o := options{newID: uuid.NewString, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T, PT]{
		key:     key,
		items:   []T{},
		store:   store,
		binding: binding,
		opts:    o,
	}
}

// Key returns the store key of the collection
func (c *Collection[T, PT]) Key() string {
	return c.key
}

// Load replaces the in-memory records with the stored snapshot. A missing
// key leaves the collection empty.
func (c *Collection[T, PT]) Load(ctx context.Context) error {
	raw, err := c.store.Load(ctx, c.key)
	if errors.Is(err, port.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode %s: %w", c.key, err)
	}
	for i := range items {
		c.binding.Normalize(&items[i])
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.opts.logger.Info("Collection loaded", zap.String("key", c.key), zap.Int("count", len(items)))
	return nil
}

// List returns the records in insertion order
func (c *Collection[T, PT]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T{}, c.items...)
}

// Len returns the number of records
func (c *Collection[T, PT]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the record with the given id
func (c *Collection[T, PT]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOf(id)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s/%s", ErrNotFound, c.key, id)
	}
	return c.items[i], nil
}

// Create assigns a new id, resets approval fields and appends the record
func (c *Collection[T, PT]) Create(ctx context.Context, r T) T {
	PT(&r).SetID(c.opts.newID())
	c.binding.Init(&r)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items[:len(c.items):len(c.items)], r)
	c.persist(ctx)
	return r
}

// UpdateByID applies patch to a copy of the record and stores the result.
// The id and approval fields cannot be changed through a patch.
func (c *Collection[T, PT]) UpdateByID(ctx context.Context, id string, patch func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%w: %s/%s", ErrNotFound, c.key, id)
	}

	current := c.items[i]
	next, err := deepCopy(current)
	if err != nil {
		return zero, err
	}
	if err := patch(&next); err != nil {
		return zero, err
	}
	PT(&next).SetID(id)
	c.binding.Keep(&next, &current)

	c.replace(i, next)
	c.persist(ctx)
	return next, nil
}

// ApplyWorkflowDecision merges an engine decision into the record
func (c *Collection[T, PT]) ApplyWorkflowDecision(ctx context.Context, id string, d workflow.Decision) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%w: %s/%s", ErrNotFound, c.key, id)
	}

	next := c.items[i]
	if _, ok := c.binding.State(&next); !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotApprovable, c.key)
	}
	c.binding.Apply(&next, d)

	c.replace(i, next)
	c.persist(ctx)
	return next, nil
}

// Delete removes the record and reports whether it existed
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	items := make([]T, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	c.items = append(items, c.items[i+1:]...)
	c.persist(ctx)
	return true
}

// State returns the approval view of one record
func (c *Collection[T, PT]) State(id string) (port.RecordState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return port.RecordState{}, fmt.Errorf("%w: %s/%s", ErrNotFound, c.key, id)
	}
	s, ok := c.binding.State(&c.items[i])
	if !ok {
		return port.RecordState{}, fmt.Errorf("%w: %s", ErrNotApprovable, c.key)
	}
	return s, nil
}

// States returns the approval view of every record, empty for master data
func (c *Collection[T, PT]) States() []port.RecordState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]port.RecordState, 0, len(c.items))
	for i := range c.items {
		if s, ok := c.binding.State(&c.items[i]); ok {
			out = append(out, s)
		}
	}
	return out
}

// Approvable reports whether records of this collection carry a workflow
func (c *Collection[T, PT]) Approvable() bool {
	var sample T
	_, ok := c.binding.State(&sample)
	return ok
}

func (c *Collection[T, PT]) indexOf(id string) int {
	for i := range c.items {
		if PT(&c.items[i]).GetID() == id {
			return i
		}
	}
	return -1
}

// replace swaps in a fresh slice so earlier List results stay untouched
func (c *Collection[T, PT]) replace(i int, r T) {
	items := append([]T{}, c.items...)
	items[i] = r
	c.items = items
}

// persist writes the full snapshot. Failures are logged and reported but
// never undo the in-memory change. Callers hold c.mu.
func (c *Collection[T, PT]) persist(ctx context.Context) {
	raw, err := json.Marshal(c.items)
	if err == nil {
		err = c.store.Save(ctx, c.key, raw)
	}
	if err != nil {
		c.opts.logger.Warn("Failed to persist collection",
			zap.String("key", c.key),
			zap.Int("count", len(c.items)),
			zap.Error(err),
		)
	}
	if c.opts.observer != nil {
		c.opts.observer.Persisted(c.key, err)
	}
}

func deepCopy[T any](v T) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("copy record: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("copy record: %w", err)
	}
	return out, nil
}
