// Package engine implements the decision engine: an ordered,
// short-circuiting gate sequence that decides whether an untrusted,
// machine-generated SQL statement may run under the active safety mode and
// the caller's role-derived permissions.
package engine

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sqlward/sqlward/pkg/errors"
	"github.com/sqlward/sqlward/pkg/metrics"
	"github.com/sqlward/sqlward/pkg/models"
	"github.com/sqlward/sqlward/pkg/policy"
	"github.com/sqlward/sqlward/pkg/rbac"
	"github.com/sqlward/sqlward/pkg/sqlparse"
)

// Engine validates SQL statements against the active safety policy and the
// caller's access-control entitlements. It is a pure function over immutable
// inputs: it holds no mutable state and is safe for unlimited concurrent use.
type Engine struct {
	parser   *sqlparse.Parser
	resolver *rbac.Resolver
	logger   zerolog.Logger
	metrics  metrics.Collector
}

// New creates a validation engine over the given access-control resolver.
func New(resolver *rbac.Resolver, logger zerolog.Logger, collector metrics.Collector) *Engine {
	if collector == nil {
		collector = metrics.NewNoOpCollector()
	}
	return &Engine{
		parser:   sqlparse.NewParser(),
		resolver: resolver,
		logger:   logger,
		metrics:  collector,
	}
}

// WithParser replaces the default parser, e.g. to tighten resource limits.
func (e *Engine) WithParser(p *sqlparse.Parser) *Engine {
	e.parser = p
	return e
}

// Validate runs the gate sequence over one candidate SQL string and returns
// the structured decision. Malformed input never faults; the only error this
// method returns is the programming-contract violation of an unknown safety
// mode name.
func (e *Engine) Validate(req models.ValidationRequest) (models.ValidationResult, error) {
	pol, err := policy.Get(req.Mode)
	if err != nil {
		return models.ValidationResult{}, err
	}

	timer := e.metrics.StartTimer("sql_validation_duration_seconds")
	result := e.run(req, pol)
	timer.Stop()

	e.metrics.IncrementCounter("sql_validation_decisions_total",
		"mode", string(pol.Mode), "reason", result.Reason.String())

	if result.IsValid {
		e.logger.Debug().
			Str("mode", string(pol.Mode)).
			Strs("tables", result.TablesAccessed).
			Msg("statement allowed")
	} else {
		e.logger.Warn().
			Str("mode", string(pol.Mode)).
			Str("reason", result.Reason.String()).
			Str("error", result.ErrorMessage).
			Msg("statement rejected")
	}

	return result, nil
}

// run executes the gates in order. Each gate either passes to the next or
// produces a terminal rejection; there is no retry inside the engine.
func (e *Engine) run(req models.ValidationRequest, pol policy.Policy) models.ValidationResult {
	// Gate 1: empty or whitespace-only input.
	raw := strings.TrimSpace(req.SQL)
	if raw == "" {
		return e.reject(models.ReasonEmpty, "query is empty", pol, "")
	}

	// Gate 2: fast forbidden-keyword scan. Only a permissive-mode caller
	// holding the dangerous-query capability passes through it.
	if pol.Mode != policy.ModePermissive || !req.MayExecuteDangerous {
		if word := sqlparse.FirstForbiddenWord(raw, policy.ForbiddenKeywords); word != "" {
			return e.reject(models.ReasonPolicyViolation,
				fmt.Sprintf("query contains forbidden keyword: %s", word), pol, word)
		}
	}

	// Gate 3: statement stacking. This must run before any further analysis
	// so "SELECT 1; DROP TABLE x" never reaches table extraction.
	statements, err := sqlparse.SplitStatements(raw, e.parser.MaxStatementLength)
	if err != nil {
		return e.reject(models.ReasonParseError, errors.GetMessage(err), pol, "")
	}
	if len(statements) > 1 {
		return e.reject(models.ReasonMultipleStatements,
			fmt.Sprintf("expected a single statement, got %d", len(statements)), pol, "")
	}
	if len(statements) == 0 {
		return e.reject(models.ReasonEmpty, "query is empty", pol, "")
	}

	// Gate 4: parse. The parser fails closed on unrecognized constructs.
	st, err := e.parser.Parse(statements[0])
	if err != nil {
		return e.reject(models.ReasonParseError, errors.GetMessage(err), pol, "")
	}

	// Gate 5: command category and statement-shape policy rules.
	if !pol.Allows(st.Command) {
		return e.reject(models.ReasonPolicyViolation,
			fmt.Sprintf("command %s is not allowed in %s mode", st.Command, pol.Mode),
			pol, st.Command.String())
	}
	for _, fn := range st.Functions {
		if pol.ForbidsFunction(fn) {
			return e.reject(models.ReasonPolicyViolation,
				fmt.Sprintf("function %s is forbidden in %s mode", fn, pol.Mode), pol, fn)
		}
	}
	if st.JoinCount > 0 && !pol.AllowJoins {
		return e.reject(models.ReasonPolicyViolation,
			fmt.Sprintf("joins are not allowed in %s mode", pol.Mode), pol, "JOIN")
	}
	if st.HasSubquery && !pol.AllowSubqueries {
		return e.reject(models.ReasonPolicyViolation,
			fmt.Sprintf("subqueries are not allowed in %s mode", pol.Mode), pol, "subquery")
	}
	if st.Limit > pol.MaxRows {
		return e.reject(models.ReasonPolicyViolation,
			fmt.Sprintf("LIMIT %d exceeds the row cap of %d", st.Limit, pol.MaxRows),
			pol, "LIMIT")
	}

	// Gate 6: table-level access control.
	tables := st.Tables()
	if all, accessible := e.resolver.AccessibleTables(req.Roles); !all {
		for _, table := range tables {
			if !accessible[strings.ToLower(table)] {
				return e.reject(models.ReasonAccessDenied,
					fmt.Sprintf("access to table %s is denied", table), pol, table)
			}
		}
	}

	// Gate 7: an unqualified wildcard cannot be statically narrowed, so it
	// is rejected against any table whose column policy is not "all". A
	// qualified wildcard ("c.*") resolves to a single table and gets the
	// same column check against that table.
	if st.HasUnqualifiedWildcard() {
		for _, table := range tables {
			if access := e.resolver.AccessibleColumns(req.Roles, table); !access.All {
				return e.reject(models.ReasonColumnRestricted,
					fmt.Sprintf("SELECT * is not allowed against table %s; select explicit columns", table),
					pol, table)
			}
		}
	}
	for _, table := range st.QualifiedWildcardTables() {
		if access := e.resolver.AccessibleColumns(req.Roles, table); !access.All {
			return e.reject(models.ReasonColumnRestricted,
				fmt.Sprintf("wildcard projection against table %s is not allowed; select explicit columns", table),
				pol, table)
		}
	}

	// Gate 8: strict mode requires a WHERE clause.
	if pol.RequireWhereClause && !st.HasWhere {
		return e.reject(models.ReasonPolicyViolation,
			fmt.Sprintf("a WHERE clause is required in %s mode", pol.Mode), pol, "WHERE")
	}

	return models.Valid(tables)
}

func (e *Engine) reject(reason models.ReasonCategory, message string, pol policy.Policy, detail string) models.ValidationResult {
	result := models.Rejected(reason, message)
	result.Explanation = Explain(reason, pol, detail)
	return result
}
