package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/asset-console/internal/domain/event"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Info(string, ...interface{}) {}

func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func decided(module string) *event.Event {
	return event.NewEvent(event.TypeWorkflowDecided, module, "rec-1", nil)
}

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.SubscribeNamed(event.TypeWorkflowDecided, "first", func(context.Context, *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.SubscribeNamed(event.TypeWorkflowDecided, "second", func(context.Context, *event.Event) error {
		order = append(order, "second")
		return nil
	})
	d.SubscribeNamed(event.TypeRecordCreated, "other", func(context.Context, *event.Event) error {
		order = append(order, "other")
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), decided("VEHICLE")))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatch_ContinuesAfterFailure(t *testing.T) {
	logger := &recordingLogger{}
	d := NewDispatcher(WithLogger(logger))
	boom := errors.New("lark unavailable")
	var ran atomic.Int32

	d.SubscribeNamed(event.TypeWorkflowDecided, "notify", func(context.Context, *event.Event) error {
		return boom
	})
	d.SubscribeNamed(event.TypeWorkflowDecided, "panics", func(context.Context, *event.Event) error {
		panic("nil map")
	})
	d.SubscribeNamed(event.TypeWorkflowDecided, "metrics", func(context.Context, *event.Event) error {
		ran.Add(1)
		return nil
	})

	err := d.Dispatch(context.Background(), decided("TAX"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "handler panic")
	assert.Equal(t, int32(1), ran.Load())
	assert.Len(t, logger.errors, 2)
}

func TestDispatchAsync_CloseWaits(t *testing.T) {
	d := NewDispatcher()
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		d.Subscribe(event.TypeRecordDeleted, func(context.Context, *event.Event) error {
			count.Add(1)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, event.NewEvent(event.TypeRecordDeleted, "SALES", "s-1", nil))
	cancel()

	require.NoError(t, d.Close())
	assert.Equal(t, int32(5), count.Load())
}

func TestSubscribe_GeneratesDistinctNames(t *testing.T) {
	d := NewDispatcher()
	noop := func(context.Context, *event.Event) error { return nil }
	d.Subscribe(event.TypeConfigSaved, noop)
	d.Subscribe(event.TypeConfigSaved, noop)

	handlers := d.ListHandlers(event.TypeConfigSaved)
	require.Len(t, handlers, 2)
	assert.NotEqual(t, handlers[0].Name, handlers[1].Name)
	assert.Nil(t, handlers[0].Handler)
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	var calls []string
	d.SubscribeNamed(event.TypeWorkflowDecided, "keep", func(context.Context, *event.Event) error {
		calls = append(calls, "keep")
		return nil
	})
	d.SubscribeNamed(event.TypeWorkflowDecided, "drop", func(context.Context, *event.Event) error {
		calls = append(calls, "drop")
		return nil
	})

	d.Unsubscribe(event.TypeWorkflowDecided, "drop")
	d.Unsubscribe(event.TypeWorkflowDecided, "missing")

	require.NoError(t, d.Dispatch(context.Background(), decided("VEHICLE")))
	assert.Equal(t, []string{"keep"}, calls)
}

func TestClose(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Close())
	assert.Error(t, d.Close())
	assert.ErrorIs(t, d.Dispatch(context.Background(), decided("VEHICLE")), ErrClosed)

	// async dispatch on a closed dispatcher is dropped
	d.DispatchAsync(context.Background(), decided("VEHICLE"))
}

func TestFilter(t *testing.T) {
	var seen []string
	h := Filter("ATK_REQ", func(_ context.Context, evt *event.Event) error {
		seen = append(seen, evt.Module)
		return nil
	})

	require.NoError(t, h(context.Background(), decided("ATK_REQ")))
	require.NoError(t, h(context.Background(), decided("ARK_REQ")))
	assert.Equal(t, []string{"ATK_REQ"}, seen)

	all := Filter("", h)
	require.NoError(t, all(context.Background(), decided("ATK_REQ")))
	assert.Len(t, seen, 2)
}
