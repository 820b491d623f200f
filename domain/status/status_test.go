package status_test

import (
	"testing"
	"voltflow/domain/status"

	. "github.com/onsi/gomega"
)

func TestApprovalTransitions(t *testing.T) {
	RegisterTestingT(t)

	t.Run("pending can move to approved, rejected or cancelled", func(t *testing.T) {
		Expect(status.CanTransitApproval(status.ApprovalPending, status.ApprovalApproved)).To(BeTrue())
		Expect(status.CanTransitApproval(status.ApprovalPending, status.ApprovalRejected)).To(BeTrue())
		Expect(status.CanTransitApproval(status.ApprovalPending, status.ApprovalCancelled)).To(BeTrue())

		Expect(status.CanTransitApproval(status.ApprovalPending, status.ApprovalClientApproved)).To(BeFalse())
		Expect(status.CanTransitApproval(status.ApprovalPending, status.ApprovalPending)).To(BeFalse())
	})

	t.Run("approved can only move through the client gate", func(t *testing.T) {
		Expect(status.CanTransitApproval(status.ApprovalApproved, status.ApprovalClientApproved)).To(BeTrue())
		Expect(status.CanTransitApproval(status.ApprovalApproved, status.ApprovalRejected)).To(BeTrue())

		Expect(status.CanTransitApproval(status.ApprovalApproved, status.ApprovalPending)).To(BeFalse())
		Expect(status.CanTransitApproval(status.ApprovalApproved, status.ApprovalCancelled)).To(BeFalse())
	})

	t.Run("terminal statuses have no way out", func(t *testing.T) {
		for _, terminal := range []status.ApprovalStatus{
			status.ApprovalRejected, status.ApprovalCancelled, status.ApprovalClientApproved} {
			Expect(status.IsTerminalApproval(terminal)).To(BeTrue())
			for _, to := range []status.ApprovalStatus{
				status.ApprovalPending, status.ApprovalApproved, status.ApprovalRejected,
				status.ApprovalCancelled, status.ApprovalClientApproved} {
				Expect(status.CanTransitApproval(terminal, to)).To(BeFalse())
			}
		}

		Expect(status.IsTerminalApproval(status.ApprovalPending)).To(BeFalse())
		Expect(status.IsTerminalApproval(status.ApprovalApproved)).To(BeFalse())
	})

	t.Run("unknown statuses are invalid and never transit", func(t *testing.T) {
		Expect(status.IsValidApprovalStatus("whatever")).To(BeFalse())
		Expect(status.CanTransitApproval("whatever", status.ApprovalApproved)).To(BeFalse())

		Expect(status.IsValidApprovalStatus(status.ApprovalPending)).To(BeTrue())
		Expect(status.IsValidApprovalStatus(status.ApprovalClientApproved)).To(BeTrue())
	})
}

func TestTaskStatuses(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should know all task statuses", func(t *testing.T) {
		for _, s := range []status.TaskStatus{
			status.TaskPending, status.TaskInProgress, status.TaskUnderReview, status.TaskApproved,
			status.TaskClientReview, status.TaskClientApproved, status.TaskCompleted, status.TaskCancelled} {
			Expect(status.IsValidTaskStatus(s)).To(BeTrue())
		}
		Expect(status.IsValidTaskStatus("done")).To(BeFalse())
	})
}
