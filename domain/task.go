package domain

import (
	"voltflow/domain/status"

	"github.com/fundwit/go-commons/types"
)

type Task struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	WorkID types.ID `json:"workId"`
	Name   string   `json:"name"`

	AssigneeID types.ID          `json:"assigneeId"`
	Status     status.TaskStatus `json:"status"`
	Progress   int               `json:"progress"`

	Stage    string `json:"stage"`
	StepName string `json:"stepName"`

	StartDate   types.Timestamp `json:"startDate" sql:"type:DATETIME(6)"`
	DueDate     types.Timestamp `json:"dueDate" sql:"type:DATETIME(6)"`
	CompletedAt types.Timestamp `json:"completedAt" sql:"type:DATETIME(6)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type TaskCreation struct {
	WorkID types.ID `json:"workId" binding:"required"`
	Name   string   `json:"name" binding:"required,lte=256"`

	AssigneeID types.ID `json:"assigneeId"`
	Stage      string   `json:"stage" binding:"omitempty,oneof=proposal project execution delivery"`
	StepName   string   `json:"stepName" binding:"omitempty,lte=128"`

	StartDate types.Timestamp `json:"startDate"`
	DueDate   types.Timestamp `json:"dueDate"`
}

type TaskUpdating struct {
	Name       string   `json:"name" binding:"omitempty,lte=256"`
	AssigneeID types.ID `json:"assigneeId"`
}

type TaskProgressUpdating struct {
	Progress int `json:"progress"`
}

type TaskQuery struct {
	WorkID     types.ID          `json:"workId" form:"workId"`
	AssigneeID types.ID          `json:"assigneeId" form:"assigneeId"`
	Status     status.TaskStatus `json:"status" form:"status"`
}
