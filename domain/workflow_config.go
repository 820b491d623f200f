package domain

import (
	"github.com/fundwit/go-commons/types"
)

// WorkflowConfig is the step template of a (workType, stage, stepName) tuple:
// the allowed deadline range and the approval gates a schedule change on that
// step must pass. At most one active row exists per tuple; rows are disabled,
// never deleted.
type WorkflowConfig struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	WorkType string `json:"workType"`
	Stage    string `json:"stage"`
	StepName string `json:"stepName"`

	DefaultDeadlineDays int `json:"defaultDeadlineDays"`
	// zero means unbounded on that side
	MinDeadlineDays int `json:"minDeadlineDays"`
	MaxDeadlineDays int `json:"maxDeadlineDays"`

	RequiresApproval       bool `json:"requiresApproval"`
	RequiresClientApproval bool `json:"requiresClientApproval"`

	Order    int  `json:"order"`
	IsActive bool `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type WorkflowConfigCreating struct {
	WorkType string `json:"workType" binding:"required,oneof=solar industrial residential maintenance"`
	Stage    string `json:"stage" binding:"required,oneof=proposal project execution delivery"`
	StepName string `json:"stepName" binding:"required,lte=128"`

	DefaultDeadlineDays int `json:"defaultDeadlineDays" binding:"required,gt=0"`
	MinDeadlineDays     int `json:"minDeadlineDays" binding:"omitempty,gt=0"`
	MaxDeadlineDays     int `json:"maxDeadlineDays" binding:"omitempty,gt=0"`

	RequiresApproval       bool `json:"requiresApproval"`
	RequiresClientApproval bool `json:"requiresClientApproval"`

	Order int `json:"order"`
}

type WorkflowConfigQuery struct {
	WorkType    string `json:"workType" form:"workType"`
	Stage       string `json:"stage" form:"stage"`
	ActiveState string `json:"activeState" form:"activeState"`
}

type DeadlineValidationRequest struct {
	WorkType     string `json:"workType" binding:"required"`
	Stage        string `json:"stage" binding:"required"`
	StepName     string `json:"stepName" binding:"required"`
	ProposedDays int    `json:"proposedDays" binding:"required,gt=0"`
}

// DeadlineValidationResult reports bounds instead of raising an error:
// callers may deliberately override an out-of-range proposal.
type DeadlineValidationResult struct {
	Valid   bool `json:"valid"`
	Min     int  `json:"min,omitempty"`
	Max     int  `json:"max,omitempty"`
	Default int  `json:"default,omitempty"`
}
