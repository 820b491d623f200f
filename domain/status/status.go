package status

// Statuses of tasks and deadline approvals are small state machines.
// All transition checks go through the tables below instead of scattered
// per-call-site comparisons.

type TaskStatus string

const (
	TaskPending        = TaskStatus("pending")
	TaskInProgress     = TaskStatus("in_progress")
	TaskUnderReview    = TaskStatus("under_review")
	TaskApproved       = TaskStatus("approved")
	TaskClientReview   = TaskStatus("client_review")
	TaskClientApproved = TaskStatus("client_approved")
	TaskCompleted      = TaskStatus("completed")
	TaskCancelled      = TaskStatus("cancelled")
)

type ApprovalStatus string

const (
	ApprovalPending        = ApprovalStatus("pending")
	ApprovalApproved       = ApprovalStatus("approved")
	ApprovalRejected       = ApprovalStatus("rejected")
	ApprovalCancelled      = ApprovalStatus("cancelled")
	ApprovalClientApproved = ApprovalStatus("client_approved")
)

var taskStatuses = []TaskStatus{
	TaskPending, TaskInProgress, TaskUnderReview, TaskApproved,
	TaskClientReview, TaskClientApproved, TaskCompleted, TaskCancelled,
}

var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:  {ApprovalApproved, ApprovalRejected, ApprovalCancelled},
	ApprovalApproved: {ApprovalClientApproved, ApprovalRejected},
	// rejected, cancelled and client_approved are terminal
	ApprovalRejected:       {},
	ApprovalCancelled:      {},
	ApprovalClientApproved: {},
}

func IsValidTaskStatus(s TaskStatus) bool {
	for _, v := range taskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsValidApprovalStatus(s ApprovalStatus) bool {
	_, found := approvalTransitions[s]
	return found
}

func CanTransitApproval(from, to ApprovalStatus) bool {
	for _, v := range approvalTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// IsTerminalApproval reports whether no transition leaves the status.
func IsTerminalApproval(s ApprovalStatus) bool {
	return len(approvalTransitions[s]) == 0
}
