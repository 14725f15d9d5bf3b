// Package rbac implements the access-control resolver: role-derived
// permissions with hierarchy inheritance, table accessibility, and
// column-level narrowing with a sensitive-column denylist.
package rbac

// Permission is a capability a role grants.
type Permission int

const (
	PermissionRead Permission = iota
	PermissionWrite
	PermissionDelete
	PermissionAdmin
	PermissionExecuteQuery
	PermissionApproveQuery
	PermissionManageUsers
)

// String returns the string representation of the permission.
func (p Permission) String() string {
	switch p {
	case PermissionRead:
		return "READ"
	case PermissionWrite:
		return "WRITE"
	case PermissionDelete:
		return "DELETE"
	case PermissionAdmin:
		return "ADMIN"
	case PermissionExecuteQuery:
		return "EXECUTE_QUERY"
	case PermissionApproveQuery:
		return "APPROVE_QUERY"
	case PermissionManageUsers:
		return "MANAGE_USERS"
	default:
		return "UNKNOWN"
	}
}
