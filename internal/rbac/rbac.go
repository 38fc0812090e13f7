package rbac

// Role constants
const (
	RolePublic = "public"
	RoleOrg    = "org"
	RoleFunder = "funder"
	RoleAdmin  = "admin"
)

// Permission constants
const (
	PermViewDirectory     = "view_directory"
	PermViewCollaboration = "view_collaboration"
	PermViewBudget        = "view_budget"
	PermEditOwnEntity     = "edit_own_entity"
	PermEditAnyEntity     = "edit_any_entity"
	PermCreateProject     = "create_project"
	PermDeleteOwnProject  = "delete_own_project"
	PermDeleteAnyProject  = "delete_any_project"
	PermModerate          = "moderate"
	PermExportData        = "export_data"
	PermViewTrust         = "view_trust"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RolePublic: {
		PermViewDirectory,
	},
	RoleOrg: {
		PermViewDirectory, PermViewCollaboration,
		PermEditOwnEntity, PermCreateProject, PermDeleteOwnProject, PermViewTrust,
	},
	RoleFunder: {
		PermViewDirectory, PermViewCollaboration, PermViewBudget,
		PermEditOwnEntity, PermCreateProject, PermDeleteOwnProject, PermExportData, PermViewTrust,
	},
	RoleAdmin: {
		PermViewDirectory, PermViewCollaboration, PermViewBudget,
		PermEditOwnEntity, PermEditAnyEntity, PermCreateProject, PermDeleteOwnProject, PermDeleteAnyProject,
		PermModerate, PermExportData, PermViewTrust,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// CanEditEntity reports whether an actor may submit an edit for an entity owned by ownerOrgID.
// Admins edit anything; other editors only the organization they are verified for.
func CanEditEntity(role, actorOrgID, ownerOrgID string) bool {
	if HasPermission(role, PermEditAnyEntity) {
		return true
	}
	if !HasPermission(role, PermEditOwnEntity) {
		return false
	}
	return actorOrgID != "" && actorOrgID == ownerOrgID
}

// CanDeleteProject mirrors CanEditEntity for project deletion.
func CanDeleteProject(role, actorOrgID, ownerOrgID string) bool {
	if HasPermission(role, PermDeleteAnyProject) {
		return true
	}
	if !HasPermission(role, PermDeleteOwnProject) {
		return false
	}
	return actorOrgID != "" && actorOrgID == ownerOrgID
}
