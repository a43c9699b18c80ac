package workflow

import (
	"strings"

	"github.com/garyjia/asset-console/internal/domain/entity"
)

// PendingStatus returns the status of a record waiting on approver
func PendingStatus(approver string) string {
	return entity.PendingApprovalPrefix + approver
}

// PendingApprover extracts the approver from a pending status
func PendingApprover(status string) (string, bool) {
	if !strings.HasPrefix(status, entity.PendingApprovalPrefix) {
		return "", false
	}
	return strings.TrimPrefix(status, entity.PendingApprovalPrefix), true
}

// IsTerminal returns true for statuses that end an approval cycle
func IsTerminal(status string) bool {
	switch status {
	case entity.StatusApproved, entity.StatusRejected, entity.StatusRevised:
		return true
	default:
		return false
	}
}
