// Package rbac resolves roles to permission sets and carries the validated
// tenant-scoped identity context for a request. The role→permission mapping is
// closed and finite; it is the single source of truth for the authorization
// model.
package rbac

import (
	userdomain "assetbase/backend/internal/user/domain"
)

// Permission represents a named capability in the system.
type Permission string

// Permission constants.
const (
	PermAssetRead     Permission = "asset:read"
	PermAssetWrite    Permission = "asset:write"
	PermLabelDesign   Permission = "label:design"
	PermLabelPrint    Permission = "label:print"
	PermImportRun     Permission = "import:run"
	PermExportRun     Permission = "export:run"
	PermUserManage    Permission = "user:manage"
	PermSessionManage Permission = "session:manage"
	PermAuditRead     Permission = "audit:read"
	PermTenantAdmin   Permission = "tenant:admin"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[userdomain.Role][]Permission{
	userdomain.RoleViewer: {
		PermAssetRead,
		PermExportRun,
	},
	userdomain.RoleMember: {
		PermAssetRead,
		PermAssetWrite,
		PermLabelPrint,
		PermExportRun,
	},
	userdomain.RoleAdmin: {
		PermAssetRead,
		PermAssetWrite,
		PermLabelDesign,
		PermLabelPrint,
		PermImportRun,
		PermExportRun,
		PermUserManage,
		PermSessionManage,
		PermAuditRead,
	},
	userdomain.RoleOwner: {
		PermAssetRead,
		PermAssetWrite,
		PermLabelDesign,
		PermLabelPrint,
		PermImportRun,
		PermExportRun,
		PermUserManage,
		PermSessionManage,
		PermAuditRead,
		PermTenantAdmin,
	},
}

// PermissionsForRole returns all permissions granted to a role.
// Returns nil for unknown roles.
func PermissionsForRole(role userdomain.Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}
