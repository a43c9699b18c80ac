package collection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/workflow"
)

type erased[T any, PT interface {
	*T
	entity.Record
}] struct {
	*Collection[T, PT]
}

// Erase exposes a typed collection through port.RecordRepository
func Erase[T any, PT interface {
	*T
	entity.Record
}](c *Collection[T, PT]) port.RecordRepository {
	return erased[T, PT]{c}
}

func (e erased[T, PT]) List() []any {
	items := e.Collection.List()
	out := make([]any, len(items))
	for i, r := range items {
		out[i] = r
	}
	return out
}

func (e erased[T, PT]) Get(id string) (any, error) {
	return e.Collection.Get(id)
}

func (e erased[T, PT]) CreateJSON(ctx context.Context, raw []byte) (string, any, error) {
	var r T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
	}
	created := e.Collection.Create(ctx, r)
	return PT(&created).GetID(), created, nil
}

// PatchJSON merges a partial JSON document over the stored record
func (e erased[T, PT]) PatchJSON(ctx context.Context, id string, raw []byte) (any, error) {
	return e.Collection.UpdateByID(ctx, id, func(r *T) error {
		if err := json.Unmarshal(raw, r); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		return nil
	})
}

func (e erased[T, PT]) ApplyWorkflowDecision(ctx context.Context, id string, d workflow.Decision) (any, error) {
	return e.Collection.ApplyWorkflowDecision(ctx, id, d)
}
