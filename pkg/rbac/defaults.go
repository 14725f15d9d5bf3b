package rbac

// Well-known role names.
const (
	RoleAdmin         = "ADMIN"
	RoleDataScientist = "DATA_SCIENTIST"
	RoleAnalyst       = "ANALYST"
	RoleViewer        = "VIEWER"
)

// DefaultConfig returns the built-in role catalog: four roles in a linear
// hierarchy (ADMIN inherits DATA_SCIENTIST inherits ANALYST inherits
// VIEWER), per-role table sets, column whitelists for the narrow roles, and
// the global sensitive-column denylist.
func DefaultConfig() Config {
	return Config{
		Roles: []RoleConfig{
			{
				Name: RoleAdmin,
				Permissions: []Permission{
					PermissionRead, PermissionWrite, PermissionDelete,
					PermissionAdmin, PermissionExecuteQuery,
					PermissionApproveQuery, PermissionManageUsers,
				},
				AllTables: true,
			},
			{
				Name: RoleDataScientist,
				Permissions: []Permission{
					PermissionRead, PermissionWrite,
					PermissionExecuteQuery, PermissionApproveQuery,
				},
				AllTables: true,
			},
			{
				Name:        RoleAnalyst,
				Permissions: []Permission{PermissionRead, PermissionExecuteQuery},
				Tables:      []string{"sales", "customers", "products", "orders"},
				Columns: map[string][]string{
					"customers": {"*"},
					"sales":     {"*"},
				},
			},
			{
				Name:        RoleViewer,
				Permissions: []Permission{PermissionRead, PermissionExecuteQuery},
				Tables:      []string{"sales"},
				Columns: map[string][]string{
					"customers": {"customername", "city", "country"},
					"sales":     {"*"},
				},
			},
		},
		Hierarchy: map[string][]string{
			RoleAdmin:         {RoleDataScientist},
			RoleDataScientist: {RoleAnalyst},
			RoleAnalyst:       {RoleViewer},
		},
		SensitiveColumns: map[string][]string{
			"users":     {"hashed_password", "email", "is_superuser"},
			"salaries":  {"amount", "bonus"},
			"customers": {"credit_limit", "phone"},
		},
	}
}

// DefaultResolver builds a resolver over DefaultConfig. The default
// hierarchy is acyclic, so construction cannot fail.
func DefaultResolver() *Resolver {
	r, err := NewResolver(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return r
}
