// Package policy holds the three canonical safety policies and the
// forbidden-keyword denylist. Policies are fixed at package initialization
// and handed out by value, so no caller can mutate the registry.
package policy

import (
	"strings"

	"github.com/sqlward/sqlward/pkg/errors"
	"github.com/sqlward/sqlward/pkg/sqlparse"
)

// Mode selects one of the canonical safety policies.
type Mode string

const (
	ModeStrict     Mode = "strict"
	ModeModerate   Mode = "moderate"
	ModePermissive Mode = "permissive"
)

// Policy is an immutable rule set governing what a statement may do under a
// given safety mode.
type Policy struct {
	Mode               Mode
	AllowedCommands    map[sqlparse.Command]bool
	MaxRows            int
	AllowJoins         bool
	AllowSubqueries    bool
	ForbiddenFunctions map[string]bool
	RequireWhereClause bool
}

// Allows reports whether the policy permits the given command category.
// UNKNOWN is never allowed: no policy lists it.
func (p Policy) Allows(cmd sqlparse.Command) bool {
	return p.AllowedCommands[cmd]
}

// AllowedCommandNames returns the allowed command names for explanations,
// in a stable order.
func (p Policy) AllowedCommandNames() []string {
	order := []sqlparse.Command{
		sqlparse.CommandSelect,
		sqlparse.CommandCTESelect,
		sqlparse.CommandMutating,
		sqlparse.CommandDestructiveDDL,
		sqlparse.CommandPrivilege,
		sqlparse.CommandTransactionControl,
	}
	var names []string
	for _, cmd := range order {
		if p.AllowedCommands[cmd] {
			names = append(names, cmd.String())
		}
	}
	return names
}

// ForbidsFunction reports whether the named function is denied under this
// policy. Matching is case-insensitive.
func (p Policy) ForbidsFunction(name string) bool {
	return p.ForbiddenFunctions[strings.ToUpper(name)]
}

// ForbiddenKeywords is the fast-scan command denylist applied before parsing.
// The scan is skipped only in permissive mode for callers holding the
// dangerous-query capability.
var ForbiddenKeywords = []string{
	"DROP", "DELETE", "TRUNCATE", "ALTER", "UPDATE", "INSERT",
	"GRANT", "REVOKE", "COMMIT", "ROLLBACK", "REPLACE", "MERGE",
}

var registry = map[Mode]Policy{
	ModeStrict: {
		Mode: ModeStrict,
		AllowedCommands: map[sqlparse.Command]bool{
			sqlparse.CommandSelect: true,
		},
		MaxRows:            100,
		AllowJoins:         false,
		AllowSubqueries:    false,
		ForbiddenFunctions: functionSet("SLEEP", "BENCHMARK", "RANDOM", "PG_SLEEP"),
		RequireWhereClause: true,
	},
	ModeModerate: {
		Mode: ModeModerate,
		AllowedCommands: map[sqlparse.Command]bool{
			sqlparse.CommandSelect:    true,
			sqlparse.CommandCTESelect: true,
		},
		MaxRows:            1000,
		AllowJoins:         true,
		AllowSubqueries:    true,
		ForbiddenFunctions: functionSet("SLEEP", "BENCHMARK", "PG_SLEEP"),
		RequireWhereClause: false,
	},
	ModePermissive: {
		Mode: ModePermissive,
		AllowedCommands: map[sqlparse.Command]bool{
			sqlparse.CommandSelect:         true,
			sqlparse.CommandCTESelect:      true,
			sqlparse.CommandMutating:       true,
			sqlparse.CommandDestructiveDDL: true,
		},
		MaxRows:            10000,
		AllowJoins:         true,
		AllowSubqueries:    true,
		ForbiddenFunctions: functionSet(),
		RequireWhereClause: false,
	},
}

// Get returns the policy for the named mode. An unknown mode name is a
// programming-contract violation, not a validation outcome.
func Get(mode string) (Policy, error) {
	p, ok := registry[Mode(strings.ToLower(strings.TrimSpace(mode)))]
	if !ok {
		return Policy{}, errors.Newf(errors.CodeInvalidMode, "unknown safety mode %q", mode)
	}
	// Maps are copied so no caller can mutate the canonical instances.
	p.AllowedCommands = copySet(p.AllowedCommands)
	p.ForbiddenFunctions = copySet(p.ForbiddenFunctions)
	return p, nil
}

func copySet[K comparable](set map[K]bool) map[K]bool {
	out := make(map[K]bool, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}

func functionSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToUpper(name)] = true
	}
	return set
}
