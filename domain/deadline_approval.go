package domain

import (
	"voltflow/domain/status"

	"github.com/fundwit/go-commons/types"
)

const (
	ApprovalTypeEmployeeDeadline = "employee_deadline"
	ApprovalTypeStageTransition  = "stage_transition"
	ApprovalTypeClientReview     = "client_review"
)

// DeadlineApproval is a proposed schedule change on a task, routed through the
// internal admin gate and, when the governing workflow step demands it, a
// second client gate.
type DeadlineApproval struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Type string   `json:"type"`

	TaskID types.ID `json:"taskId"`
	WorkID types.ID `json:"workId"`

	ProposedStartDate    types.Timestamp `json:"proposedStartDate" sql:"type:DATETIME(6)"`
	ProposedEndDate      types.Timestamp `json:"proposedEndDate" sql:"type:DATETIME(6)"`
	ProposedDeadlineDays int             `json:"proposedDeadlineDays"`
	Justification        string          `json:"justification" sql:"type:TEXT"`

	Status status.ApprovalStatus `json:"status"`

	RequestedBy types.ID `json:"requestedBy"`

	ApprovedBy      types.ID        `json:"approvedBy"`
	AdminNotes      string          `json:"adminNotes" sql:"type:TEXT"`
	AdminApprovedAt types.Timestamp `json:"adminApprovedAt" sql:"type:DATETIME(6)"`

	ClientID         types.ID        `json:"clientId"`
	ClientNotes      string          `json:"clientNotes" sql:"type:TEXT"`
	ClientApprovedAt types.Timestamp `json:"clientApprovedAt" sql:"type:DATETIME(6)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type DeadlineApprovalCreating struct {
	Type   string   `json:"type" binding:"required,oneof=employee_deadline stage_transition client_review"`
	TaskID types.ID `json:"taskId" binding:"required"`
	WorkID types.ID `json:"workId"`

	ProposedStartDate    types.Timestamp `json:"proposedStartDate"`
	ProposedEndDate      types.Timestamp `json:"proposedEndDate"`
	ProposedDeadlineDays int             `json:"proposedDeadlineDays" binding:"omitempty,gt=0"`
	Justification        string          `json:"justification"`
}

type AdminDecision struct {
	Status     status.ApprovalStatus `json:"status" binding:"required,oneof=approved rejected"`
	AdminNotes string                `json:"adminNotes"`
}

type ClientDecision struct {
	Approved    *bool  `json:"approved" binding:"required"`
	ClientNotes string `json:"clientNotes"`
}

type DeadlineApprovalQuery struct {
	TaskID types.ID              `json:"taskId" form:"taskId"`
	WorkID types.ID              `json:"workId" form:"workId"`
	Status status.ApprovalStatus `json:"status" form:"status"`
}

type ApprovalStats struct {
	Pending        int `json:"pending"`
	Approved       int `json:"approved"`
	Rejected       int `json:"rejected"`
	Cancelled      int `json:"cancelled"`
	ClientApproved int `json:"clientApproved"`
	Total          int `json:"total"`
}
