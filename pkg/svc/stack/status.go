package stack

import "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

// IsCreateInProgress reports whether a status belongs to an unfinished create, including
// the rollback of a failed create.
func IsCreateInProgress(status types.StackStatus) bool {
	switch status {
	case types.StackStatusCreateInProgress,
		types.StackStatusRollbackInProgress,
		types.StackStatusReviewInProgress:
		return true
	default:
		return false
	}
}

// IsComplete reports whether a status is a settled successful one.
func IsComplete(status types.StackStatus) bool {
	return status == types.StackStatusCreateComplete || status == types.StackStatusUpdateComplete
}

// LiveStatuses are the statuses of stacks that exist and are not being deleted.
func LiveStatuses() []types.StackStatus {
	return []types.StackStatus{
		types.StackStatusCreateInProgress,
		types.StackStatusCreateComplete,
		types.StackStatusCreateFailed,
		types.StackStatusRollbackInProgress,
		types.StackStatusRollbackComplete,
		types.StackStatusRollbackFailed,
		types.StackStatusUpdateInProgress,
		types.StackStatusUpdateCompleteCleanupInProgress,
		types.StackStatusUpdateComplete,
		types.StackStatusUpdateRollbackInProgress,
		types.StackStatusUpdateRollbackComplete,
		types.StackStatusUpdateRollbackFailed,
		types.StackStatusUpdateRollbackCompleteCleanupInProgress,
		types.StackStatusReviewInProgress,
	}
}
