package entity

// Approval status values written to Approval.ApprovalStatus
const (
	StatusDraft    = "Draft"
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusRevised  = "Revised"

	// PendingApprovalPrefix precedes the approver of the tier a record is waiting on
	PendingApprovalPrefix = "Pending Approval - "
)

// ApproverType says how ApprovalTier.ApproverValue is interpreted
type ApproverType string

const (
	ApproverRole ApproverType = "Role"
	ApproverUser ApproverType = "User"
)

// IsValid returns true for Role and User
func (t ApproverType) IsValid() bool {
	return t == ApproverRole || t == ApproverUser
}

// AllBranches is the branch scope of a configuration that applies everywhere
const AllBranches = "All Branches"

// DateLayout is the calendar-date format used for log entries and date stamps
const DateLayout = "2006-01-02"

// DefaultActor is recorded when no identity is supplied with an action
const DefaultActor = "current authenticated user"
