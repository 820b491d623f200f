package authority

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

const (
	SystemAdminRole  = "system:admin"
	StaffRole        = "staff"
	ClientRolePrefix = "client_"
)

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasAdminRole() bool {
	return c.HasRole(SystemAdminRole)
}

func (c Permissions) HasStaffRole() bool {
	return c.HasAdminRole() || c.HasRole(StaffRole)
}

func (c Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func (c Permissions) HasClientRole() bool {
	return c.HasRolePrefix(ClientRolePrefix)
}

// ClientID parses the client id out of a "client_<id>" role, zero when absent.
func (c Permissions) ClientID() types.ID {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), ClientRolePrefix) {
			id, err := types.ParseID(v[len(ClientRolePrefix):])
			if err != nil {
				continue
			}
			return id
		}
	}
	return types.ID(0)
}

func (c Permissions) HasClientPerm(clientId types.ID) bool {
	return c.HasAdminRole() || c.HasRole(ClientRolePrefix+clientId.String())
}
