package workflow

import (
	"fmt"
	"strings"
)

// Action is a workflow step taken on an approvable record
type Action string

const (
	ActionApprove Action = "Approve"
	ActionReject  Action = "Reject"
	ActionRevise  Action = "Revise"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// IsValid returns true for Approve, Reject and Revise
func (a Action) IsValid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionRevise:
		return true
	default:
		return false
	}
}

// RequiresComment returns true if the action cannot be taken without a comment
func (a Action) RequiresComment() bool {
	return a == ActionReject || a == ActionRevise
}

// ParseAction accepts any letter case, e.g. "approve" or "REJECT"
func ParseAction(raw string) (Action, error) {
	s := strings.TrimSpace(raw)
	for _, a := range []Action{ActionApprove, ActionReject, ActionRevise} {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
}

// ValidateComment checks the comment precondition of an action
func ValidateComment(a Action, comment string) error {
	if a.RequiresComment() && strings.TrimSpace(comment) == "" {
		return fmt.Errorf("%w: %s", ErrInvalidComment, a)
	}
	return nil
}
