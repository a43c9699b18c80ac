package port

import (
	"context"
	"errors"

	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/workflow"
)

var (
	// ErrRecordNotFound is returned when no record has the requested id
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a record payload cannot be decoded
	ErrInvalidRecord = errors.New("invalid record payload")
)

// RecordState is the approval view of a record, whatever its shape
type RecordState struct {
	ID          string                    `json:"id"`
	Status      string                    `json:"approvalStatus"`
	CurrentTier int                       `json:"currentTier"`
	Workflow    []entity.WorkflowLogEntry `json:"workflow"`
}

// Snapshot returns the engine input view of the state
func (s RecordState) Snapshot() workflow.Snapshot {
	return workflow.Snapshot{Status: s.Status, CurrentTier: s.CurrentTier}
}

// RecordRepository is a module collection with its record type erased.
// Records cross this boundary as values safe to encode as JSON.
type RecordRepository interface {
	Key() string
	Approvable() bool
	Load(ctx context.Context) error

	List() []any
	Get(id string) (any, error)
	// CreateJSON decodes and inserts a record, returning its assigned id
	CreateJSON(ctx context.Context, raw []byte) (string, any, error)
	PatchJSON(ctx context.Context, id string, raw []byte) (any, error)
	Delete(ctx context.Context, id string) bool

	State(id string) (RecordState, error)
	States() []RecordState
	ApplyWorkflowDecision(ctx context.Context, id string, d workflow.Decision) (any, error)
}
