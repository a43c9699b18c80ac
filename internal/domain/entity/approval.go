package entity

import "sort"

// ApprovalTier is one step of an approval chain
type ApprovalTier struct {
	Level         int          `json:"level"`
	ApproverType  ApproverType `json:"approverType"`
	ApproverValue string       `json:"approverValue"`
	SLADays       int          `json:"slaDays"`
}

// ApprovalConfiguration is the approval chain configured for one business module
type ApprovalConfiguration struct {
	ID          string         `json:"id"`
	ModuleName  string         `json:"moduleName"`
	BranchScope string         `json:"branchScope"`
	Tiers       []ApprovalTier `json:"tiers"`
	UpdatedAt   string         `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot alias the stored tiers
func (c ApprovalConfiguration) Clone() ApprovalConfiguration {
	out := c
	out.Tiers = append([]ApprovalTier(nil), c.Tiers...)
	if out.Tiers == nil {
		out.Tiers = []ApprovalTier{}
	}
	return out
}

// SortedTiers returns a copy of the tiers ordered by level
func (c ApprovalConfiguration) SortedTiers() []ApprovalTier {
	tiers := append([]ApprovalTier(nil), c.Tiers...)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Level < tiers[j].Level
	})
	return tiers
}

// Renumber sorts the tiers by level and rewrites levels as 1..N
func (c *ApprovalConfiguration) Renumber() {
	c.Tiers = c.SortedTiers()
	for i := range c.Tiers {
		c.Tiers[i].Level = i + 1
	}
}

// WorkflowLogEntry is one action recorded on an approvable record
type WorkflowLogEntry struct {
	Step            string `json:"step"`
	ResultingStatus string `json:"resultingStatus"`
	Actor           string `json:"actor"`
	Date            string `json:"date"`
	Comment         string `json:"comment"`
}

// Approval holds the workflow fields shared by every approvable record
type Approval struct {
	ApprovalStatus string             `json:"approvalStatus"`
	CurrentTier    int                `json:"currentTier"`
	Workflow       []WorkflowLogEntry `json:"workflow"`
}

// Reset puts the approval fields into their freshly created state
func (a *Approval) Reset() {
	a.ApprovalStatus = StatusPending
	a.CurrentTier = 0
	a.Workflow = []WorkflowLogEntry{}
}

// ApprovalFields exposes the embedded approval fields of a record
func (a *Approval) ApprovalFields() *Approval {
	return a
}

// Record is implemented by pointers to every stored record type
type Record interface {
	GetID() string
	SetID(id string)
}

// Approvable is implemented by pointers to records embedding Approval
type Approvable interface {
	Record
	ApprovalFields() *Approval
}
