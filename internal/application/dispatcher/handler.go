package dispatcher

import (
	"context"

	"github.com/garyjia/asset-console/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name        string
	EventType   event.Type
	Handler     Handler
	Description string
}

// Filter narrows a handler to events of one module, empty matches all
func Filter(module string, h Handler) Handler {
	if module == "" {
		return h
	}
	return func(ctx context.Context, evt *event.Event) error {
		if evt.Module != module {
			return nil
		}
		return h(ctx, evt)
	}
}
