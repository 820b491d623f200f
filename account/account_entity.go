package account

import "github.com/fundwit/go-commons/types"

const (
	UserTypeAdmin  = "admin"
	UserTypeStaff  = "staff"
	UserTypeClient = "client"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name" gorm:"unique_index"`
	Secret string   `json:"secret"`

	Nickname string `json:"nickname"`

	// admin, staff or client; client users carry the client they act for
	Type     string   `json:"type"`
	ClientID types.ID `json:"clientId"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Type     string   `json:"type"`
	ClientID types.ID `json:"clientId"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret"`
	NewSecret      string `json:"newSecret" binding:"required,gte=6,lte=32"`
}

type UserCreation struct {
	Name     string   `json:"name" binding:"required,lte=32"`
	Secret   string   `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname string   `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Type     string   `json:"type" binding:"required,oneof=admin staff client"`
	ClientID types.ID `json:"clientId"`
}

type UserUpdation struct {
	Nickname string `json:"nickname" binding:"required,lte=32"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
