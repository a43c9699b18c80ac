// Package workflow decides the outcome of approval actions against a
// configured tier chain. Decide has no side effects; callers apply the result.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/asset-console/internal/domain/entity"
)

// Snapshot is the part of a record the engine reads
type Snapshot struct {
	Status      string
	CurrentTier int
}

// Input is everything a decision depends on
type Input struct {
	Action  Action
	Record  Snapshot
	Config  *entity.ApprovalConfiguration // nil when the module has no configuration
	Actor   string
	Comment string
	Today   time.Time
}

// Decision is the outcome to apply to a record
type Decision struct {
	NextStatus string
	NextTier   int
	LogEntry   entity.WorkflowLogEntry

	// PendingTier is the tier now awaited, set only when the chain advanced
	PendingTier *entity.ApprovalTier
	// DueDate is Today plus the pending tier's SLA, empty when nothing is pending
	DueDate string
	// Anomaly carries a configuration diagnostic that did not block the decision
	Anomaly error
}

// Decide computes the next status, tier and log entry for an action
func Decide(in Input) (Decision, error) {
	if !in.Action.IsValid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrInvalidAction, in.Action)
	}
	if err := ValidateComment(in.Action, in.Comment); err != nil {
		return Decision{}, err
	}

	d := Decision{NextTier: in.Record.CurrentTier}
	switch in.Action {
	case ActionReject:
		d.NextStatus = entity.StatusRejected
	case ActionRevise:
		d.NextStatus = entity.StatusRevised
	case ActionApprove:
		approve(&d, in)
	}

	d.LogEntry = entity.WorkflowLogEntry{
		Step:            in.Action.String(),
		ResultingStatus: d.NextStatus,
		Actor:           in.Actor,
		Date:            in.Today.Format(entity.DateLayout),
		Comment:         in.Comment,
	}
	return d, nil
}

func approve(d *Decision, in Input) {
	d.NextStatus = entity.StatusApproved
	if in.Config == nil || len(in.Config.Tiers) == 0 {
		return
	}

	tiers := in.Config.SortedTiers()
	current := max(in.Record.CurrentTier, 0)
	if current >= len(tiers) {
		return
	}

	want := current + 1
	tier, ok := tierAt(tiers, want)
	if !ok {
		d.Anomaly = fmt.Errorf("%w: %q has %d tiers but no level %d",
			ErrMalformedConfiguration, in.Config.ModuleName, len(tiers), want)
		return
	}

	if strings.TrimSpace(tier.ApproverValue) == "" {
		d.Anomaly = fmt.Errorf("%w: %q level %d has no approver",
			ErrMalformedConfiguration, in.Config.ModuleName, want)
	}
	d.NextTier = want
	d.NextStatus = PendingStatus(tier.ApproverValue)
	d.PendingTier = &tier
	if tier.SLADays > 0 {
		d.DueDate = in.Today.AddDate(0, 0, tier.SLADays).Format(entity.DateLayout)
	}
}

func tierAt(tiers []entity.ApprovalTier, level int) (entity.ApprovalTier, bool) {
	for _, t := range tiers {
		if t.Level == level {
			return t, true
		}
	}
	return entity.ApprovalTier{}, false
}
