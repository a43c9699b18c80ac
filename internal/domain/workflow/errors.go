package workflow

import "errors"

var (
	// ErrInvalidComment is returned when Reject or Revise carries no comment
	ErrInvalidComment = errors.New("comment is required for reject and revise")

	// ErrInvalidAction is returned for an action outside Approve, Reject and Revise
	ErrInvalidAction = errors.New("invalid workflow action")

	// ErrMalformedConfiguration marks a tier chain missing an expected level.
	// It is reported on Decision.Anomaly and never fails a decision.
	ErrMalformedConfiguration = errors.New("malformed approval configuration")
)
