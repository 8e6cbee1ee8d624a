// internal/app/system/authz/roles.go
package authz

// Roles carried in church tokens.
const (
	RoleAdmin       = "admin"
	RolePastor      = "pastor"
	RoleBranchAdmin = "branch_admin"
	RoleLeader      = "leader"
	RoleMember      = "member"
)

// Role sets used by route guards.
var (
	// ChurchManagers run the whole church.
	ChurchManagers = []string{RoleAdmin, RolePastor}
	// Staff additionally includes branch administrators.
	Staff = []string{RoleAdmin, RolePastor, RoleBranchAdmin}
	// MinistryLeads can manage departments and groups they serve in.
	MinistryLeads = []string{RoleAdmin, RolePastor, RoleBranchAdmin, RoleLeader}
	// Everyone is any authenticated church role.
	Everyone = []string{RoleAdmin, RolePastor, RoleBranchAdmin, RoleLeader, RoleMember}
)

// IsStaffRole reports whether role may see unpublished material.
func IsStaffRole(role string) bool {
	for _, r := range Staff {
		if r == role {
			return true
		}
	}
	return false
}
