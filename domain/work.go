package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	WorkTypeSolar       = "solar"
	WorkTypeIndustrial  = "industrial"
	WorkTypeResidential = "residential"
	WorkTypeMaintenance = "maintenance"
)

const (
	StageProposal  = "proposal"
	StageProject   = "project"
	StageExecution = "execution"
	StageDelivery  = "delivery"
)

const (
	StatusOff = "off"
	StatusOn  = "on"
	StatusAll = "all"
)

type Work struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	Identifier string   `json:"identifier" gorm:"unique_index"`
	Name       string   `json:"name"`
	ClientID   types.ID `json:"clientId"`

	WorkType     string `json:"workType"`
	CurrentStage string `json:"currentStage"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	ArchiveTime types.Timestamp `json:"archiveTime" sql:"type:DATETIME(6)"`
}

type WorkCreation struct {
	Name     string   `json:"name" binding:"required,lte=256"`
	ClientID types.ID `json:"clientId" binding:"required"`
	WorkType string   `json:"workType" binding:"required,oneof=solar industrial residential maintenance"`
}

type WorkUpdating struct {
	Name         string `json:"name" binding:"omitempty,lte=256"`
	CurrentStage string `json:"currentStage" binding:"omitempty,oneof=proposal project execution delivery"`
}

type WorkQuery struct {
	Name         string   `json:"name" form:"name"`
	ClientID     types.ID `json:"clientId" form:"clientId"`
	WorkType     string   `json:"workType" form:"workType"`
	ArchiveState string   `json:"archiveState" form:"archiveState"`
}

type WorkSelection struct {
	WorkIdList []types.ID `json:"workIdList" binding:"required"`
}
