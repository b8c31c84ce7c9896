package model

type Role string

const (
	RoleSuperAdmin      Role = "super_admin" // platform-wide
	RoleCompanyAdmin    Role = "company_admin"
	RoleCampaignManager Role = "campaign_manager"
	RoleEmployee        Role = "employee"
)

// Caller is an authenticated staff member or employee, as resolved by the identity port.
type Caller struct {
	UserID         string
	Email          string
	OrganizationID string
	Role           Role
}

func (c *Caller) IsSuperAdmin() bool { return c != nil && c.Role == RoleSuperAdmin }

// CanManage reports whether the caller may issue invites and read campaign state
// for campaigns owned by orgID.
func (c *Caller) CanManage(orgID string) bool {
	if c == nil {
		return false
	}
	if c.Role == RoleSuperAdmin {
		return true
	}
	if c.OrganizationID == "" || c.OrganizationID != orgID {
		return false
	}
	return c.Role == RoleCompanyAdmin || c.Role == RoleCampaignManager
}

// IsPrivileged reports whether the role may issue at all, before any org check.
func (c *Caller) IsPrivileged() bool {
	if c == nil {
		return false
	}
	switch c.Role {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleCampaignManager:
		return true
	}
	return false
}
