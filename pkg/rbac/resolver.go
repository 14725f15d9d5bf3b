package rbac

import (
	"sort"
	"strings"

	"github.com/sqlward/sqlward/pkg/errors"
)

// RoleConfig describes one role: its direct permissions and its table and
// column accessibility. A table listed in Columns carries an explicit
// column whitelist; a table absent from Columns defaults to all columns,
// since table-level access is the coarse gate and column rules only narrow.
type RoleConfig struct {
	Name        string
	Permissions []Permission
	AllTables   bool
	Tables      []string
	Columns     map[string][]string
}

// Config is the static access-control configuration the resolver is built
// from: the role catalog, the hierarchy (parent inherits all permissions of
// its children), and the global sensitive-column denylist keyed by table.
type Config struct {
	Roles            []RoleConfig
	Hierarchy        map[string][]string
	SensitiveColumns map[string][]string
}

// ColumnAccess describes which columns of one table a role set may read.
// All=true means unrestricted. When All is false, Columns holds the explicit
// whitelist if one can be enumerated; it is nil when access is "everything
// except the sensitive columns", which cannot be enumerated without schema
// knowledge.
type ColumnAccess struct {
	All     bool
	Columns []string
}

// Resolver answers permission and accessibility questions for role sets.
// It is immutable after construction and safe for concurrent use; the
// transitive closure over the hierarchy is memoized at build time since the
// hierarchy is static.
type Resolver struct {
	roles     map[string]RoleConfig
	closure   map[string][]string
	sensitive map[string]map[string]bool
}

// NewResolver builds a resolver from the given configuration. A cyclic role
// hierarchy is a configuration error and is rejected here rather than
// tolerated at validation time.
func NewResolver(cfg Config) (*Resolver, error) {
	r := &Resolver{
		roles:     make(map[string]RoleConfig, len(cfg.Roles)),
		closure:   make(map[string][]string),
		sensitive: make(map[string]map[string]bool, len(cfg.SensitiveColumns)),
	}
	for _, role := range cfg.Roles {
		r.roles[normalize(role.Name)] = role
	}
	for table, cols := range cfg.SensitiveColumns {
		set := make(map[string]bool, len(cols))
		for _, col := range cols {
			set[normalize(col)] = true
		}
		r.sensitive[normalize(table)] = set
	}

	hierarchy := make(map[string][]string, len(cfg.Hierarchy))
	for parent, children := range cfg.Hierarchy {
		for _, child := range children {
			hierarchy[normalize(parent)] = append(hierarchy[normalize(parent)], normalize(child))
		}
	}

	for name := range r.roles {
		reach, err := expand(name, hierarchy, make(map[string]int))
		if err != nil {
			return nil, err
		}
		sort.Strings(reach)
		r.closure[name] = reach
	}

	return r, nil
}

// expand computes the set of roles reachable from name, failing on cycles.
// States: 0 unvisited, 1 on the current path, 2 done.
func expand(name string, hierarchy map[string][]string, state map[string]int) ([]string, error) {
	if state[name] == 1 {
		return nil, errors.Newf(errors.CodeInvalidHierarchy,
			"role hierarchy contains a cycle through %q", name)
	}
	if state[name] == 2 {
		return closureOf(name, hierarchy), nil
	}
	state[name] = 1
	seen := map[string]bool{name: true}
	for _, child := range hierarchy[name] {
		reach, err := expand(child, hierarchy, state)
		if err != nil {
			return nil, err
		}
		for _, role := range reach {
			seen[role] = true
		}
	}
	state[name] = 2

	out := make([]string, 0, len(seen))
	for role := range seen {
		out = append(out, role)
	}
	return out, nil
}

// closureOf recomputes reachability for an already-verified subtree.
func closureOf(name string, hierarchy map[string][]string) []string {
	seen := map[string]bool{}
	stack := []string{name}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, hierarchy[cur]...)
	}
	out := make([]string, 0, len(seen))
	for role := range seen {
		out = append(out, role)
	}
	return out
}

// resolve returns the closure of the role set: every named role plus every
// role reachable through hierarchy edges. Unknown role names are skipped.
func (r *Resolver) resolve(roles []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range roles {
		for _, member := range r.closure[normalize(name)] {
			if _, known := r.roles[member]; known && !seen[member] {
				seen[member] = true
				out = append(out, member)
			}
		}
	}
	return out
}

// Permissions returns the union of direct permissions across the role set
// and everything those roles inherit.
func (r *Resolver) Permissions(roles []string) map[Permission]bool {
	perms := make(map[Permission]bool)
	for _, name := range r.resolve(roles) {
		for _, p := range r.roles[name].Permissions {
			perms[p] = true
		}
	}
	return perms
}

// HasPermission reports whether the role set resolves the given permission.
func (r *Resolver) HasPermission(roles []string, p Permission) bool {
	return r.Permissions(roles)[p]
}

// AccessibleTables returns the tables the role set may reference. all=true
// is the "all tables" sentinel, returned when any resolved role is
// admin-equivalent; otherwise tables holds the lower-cased union of the
// explicit per-role table sets.
func (r *Resolver) AccessibleTables(roles []string) (all bool, tables map[string]bool) {
	resolved := r.resolve(roles)
	tables = make(map[string]bool)
	for _, name := range resolved {
		role := r.roles[name]
		if role.AllTables {
			return true, nil
		}
		for _, table := range role.Tables {
			tables[normalize(table)] = true
		}
	}
	return false, tables
}

// CanAccessTable reports whether the role set may reference the named table.
func (r *Resolver) CanAccessTable(roles []string, table string) bool {
	all, tables := r.AccessibleTables(roles)
	return all || tables[normalize(table)]
}

// IsAdminEquivalent reports whether the role set resolves to unrestricted
// access: it holds the ADMIN permission or any resolved role maps to the
// "all tables" sentinel.
func (r *Resolver) IsAdminEquivalent(roles []string) bool {
	for _, name := range r.resolve(roles) {
		role := r.roles[name]
		if role.AllTables {
			return true
		}
		for _, p := range role.Permissions {
			if p == PermissionAdmin {
				return true
			}
		}
	}
	return false
}

// AccessibleColumns returns the column accessibility of table for the role
// set. Admin-equivalent callers always get all columns. For everyone else
// the sensitive-column denylist overrides any whitelist, an explicit
// whitelist applies when one exists, and a reachable table with no column
// policy defaults to all columns.
func (r *Resolver) AccessibleColumns(roles []string, table string) ColumnAccess {
	if r.IsAdminEquivalent(roles) {
		return ColumnAccess{All: true}
	}

	key := normalize(table)
	sensitive := r.sensitive[key]

	anyAll := false
	whitelist := make(map[string]bool)
	for _, name := range r.resolve(roles) {
		cols, hasPolicy := lookupColumns(r.roles[name].Columns, key)
		if !hasPolicy || isWildcard(cols) {
			anyAll = true
			continue
		}
		for _, col := range cols {
			if !sensitive[normalize(col)] {
				whitelist[normalize(col)] = true
			}
		}
	}

	if anyAll {
		if len(sensitive) == 0 {
			return ColumnAccess{All: true}
		}
		// Everything except the sensitive columns; not enumerable.
		return ColumnAccess{All: false}
	}

	out := make([]string, 0, len(whitelist))
	for col := range whitelist {
		out = append(out, col)
	}
	sort.Strings(out)
	return ColumnAccess{All: false, Columns: out}
}

// CanExecuteDangerous reports whether the role set carries the caller-level
// capability required for mutating or destructive statements: ADMIN, or
// write access paired with query-approval authority.
func (r *Resolver) CanExecuteDangerous(roles []string) bool {
	perms := r.Permissions(roles)
	if perms[PermissionAdmin] {
		return true
	}
	return perms[PermissionWrite] && perms[PermissionApproveQuery]
}

func lookupColumns(columns map[string][]string, table string) ([]string, bool) {
	for name, cols := range columns {
		if normalize(name) == table {
			return cols, true
		}
	}
	return nil, false
}

func isWildcard(cols []string) bool {
	for _, col := range cols {
		if col == "*" {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
