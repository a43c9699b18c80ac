package event

// Type identifies the type of domain event
type Type string

const (
	TypeWorkflowDecided Type = "workflow.decided"
	TypeRecordCreated   Type = "record.created"
	TypeRecordUpdated   Type = "record.updated"
	TypeRecordDeleted   Type = "record.deleted"
	TypeConfigSaved     Type = "config.saved"
	TypeConfigRemoved   Type = "config.removed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeWorkflowDecided,
		TypeRecordCreated,
		TypeRecordUpdated,
		TypeRecordDeleted,
		TypeConfigSaved,
		TypeConfigRemoved:
		return true
	default:
		return false
	}
}
