package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Client struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	Name       string   `json:"name"`
	Identifier string   `json:"identifier" gorm:"unique_index"`

	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	ArchiveTime types.Timestamp `json:"archiveTime" sql:"type:DATETIME(6)"`

	// next sequence number for work identifiers under this client
	NextWorkSeq int `json:"-"`
}

type ClientCreating struct {
	Name       string `json:"name" binding:"required,lte=128"`
	Identifier string `json:"identifier" binding:"required,uppercase,lte=8"`

	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
}

type ClientUpdating struct {
	Name         string `json:"name" binding:"required,lte=128"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
}

type ClientQuery struct {
	Name string `json:"name" form:"name"`
}
