package collection

import (
	"slices"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/workflow"
)

// Binding adapts a record shape to the approval fields the collection manages
type Binding[T any] interface {
	// Init resets approval fields of a newly created record
	Init(r *T)
	// Normalize fills approval fields missing from a loaded snapshot
	Normalize(r *T)
	// State reports the approval view, false for records without a workflow
	State(r *T) (port.RecordState, bool)
	// Apply merges a decision into the record
	Apply(r *T, d workflow.Decision)
	// Keep copies fields a patch may not change from src to dst
	Keep(dst, src *T)
}

// ApprovalBinding serves every record that embeds entity.Approval
type ApprovalBinding[T any, PT interface {
	*T
	entity.Approvable
}] struct{}

func (ApprovalBinding[T, PT]) Init(r *T) {
	PT(r).ApprovalFields().Reset()
}

func (ApprovalBinding[T, PT]) Normalize(r *T) {
	a := PT(r).ApprovalFields()
	if a.ApprovalStatus == "" {
		a.ApprovalStatus = entity.StatusPending
	}
	a.CurrentTier = max(a.CurrentTier, 0)
	if a.Workflow == nil {
		a.Workflow = []entity.WorkflowLogEntry{}
	}
}

func (ApprovalBinding[T, PT]) State(r *T) (port.RecordState, bool) {
	a := PT(r).ApprovalFields()
	return port.RecordState{
		ID:          PT(r).GetID(),
		Status:      a.ApprovalStatus,
		CurrentTier: a.CurrentTier,
		Workflow:    a.Workflow,
	}, true
}

func (ApprovalBinding[T, PT]) Apply(r *T, d workflow.Decision) {
	a := PT(r).ApprovalFields()
	a.ApprovalStatus = d.NextStatus
	a.CurrentTier = d.NextTier
	a.Workflow = append(slices.Clip(a.Workflow), d.LogEntry)
}

func (ApprovalBinding[T, PT]) Keep(dst, src *T) {
	*PT(dst).ApprovalFields() = *PT(src).ApprovalFields()
}

// MasterBinding serves lookup collections that have no workflow
type MasterBinding[T any] struct{}

func (MasterBinding[T]) Init(*T)                           {}
func (MasterBinding[T]) Normalize(*T)                      {}
func (MasterBinding[T]) State(*T) (port.RecordState, bool) { return port.RecordState{}, false }
func (MasterBinding[T]) Apply(*T, workflow.Decision)       {}
func (MasterBinding[T]) Keep(*T, *T)                       {}

// BranchImprovementBinding maps decisions onto the branch improvement
// shape, which keeps `status` and a {role, status, comment, date} log.
type BranchImprovementBinding struct{}

func (BranchImprovementBinding) Init(r *entity.BranchImprovement) {
	r.Status = entity.StatusPending
	r.CurrentTier = 0
	r.Workflow = []entity.BranchWorkflowEntry{}
}

func (BranchImprovementBinding) Normalize(r *entity.BranchImprovement) {
	if r.Status == "" {
		r.Status = entity.StatusPending
	}
	r.CurrentTier = max(r.CurrentTier, 0)
	if r.Workflow == nil {
		r.Workflow = []entity.BranchWorkflowEntry{}
	}
}

func (BranchImprovementBinding) State(r *entity.BranchImprovement) (port.RecordState, bool) {
	log := make([]entity.WorkflowLogEntry, len(r.Workflow))
	for i, e := range r.Workflow {
		log[i] = entity.WorkflowLogEntry{
			Step:            stepFor(e.Status),
			ResultingStatus: e.Status,
			Actor:           e.Role,
			Date:            e.Date,
			Comment:         e.Comment,
		}
	}
	return port.RecordState{
		ID:          r.ID,
		Status:      r.Status,
		CurrentTier: r.CurrentTier,
		Workflow:    log,
	}, true
}

func (BranchImprovementBinding) Apply(r *entity.BranchImprovement, d workflow.Decision) {
	r.Status = d.NextStatus
	r.CurrentTier = d.NextTier
	r.Workflow = append(slices.Clip(r.Workflow), entity.BranchWorkflowEntry{
		Role:    d.LogEntry.Actor,
		Status:  d.LogEntry.ResultingStatus,
		Comment: d.LogEntry.Comment,
		Date:    d.LogEntry.Date,
	})
}

func (BranchImprovementBinding) Keep(dst, src *entity.BranchImprovement) {
	dst.Status = src.Status
	dst.CurrentTier = src.CurrentTier
	dst.Workflow = src.Workflow
}

// stepFor recovers the action from a branch log status, which does not store it
func stepFor(status string) string {
	switch status {
	case entity.StatusRejected:
		return workflow.ActionReject.String()
	case entity.StatusRevised:
		return workflow.ActionRevise.String()
	default:
		return workflow.ActionApprove.String()
	}
}
