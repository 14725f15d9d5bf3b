package engine

import (
	"fmt"
	"strings"

	"github.com/sqlward/sqlward/pkg/models"
	"github.com/sqlward/sqlward/pkg/policy"
)

// Explain converts a rejection reason and the active policy into a sentence
// an operator can audit without source access. It names concrete policy
// values and the offending table or keyword, but never the identities of
// sensitive columns that were excluded.
func Explain(reason models.ReasonCategory, pol policy.Policy, detail string) string {
	switch reason {
	case models.ReasonEmpty:
		return "The request contained no SQL statement to validate."

	case models.ReasonParseError:
		return "The statement could not be parsed into a supported structure. " +
			"The engine rejects rather than guesses when it does not recognize a construct."

	case models.ReasonMultipleStatements:
		return "Executing multiple SQL statements in a single request is blocked " +
			"unconditionally to prevent injection via statement stacking."

	case models.ReasonPolicyViolation:
		msg := fmt.Sprintf(
			"The statement violates the %s policy: only %s operations are permitted, "+
				"with a row cap of %d.",
			pol.Mode, strings.Join(pol.AllowedCommandNames(), ", "), pol.MaxRows)
		if detail != "" {
			msg += fmt.Sprintf(" The offending element was %s.", detail)
		}
		if pol.RequireWhereClause {
			msg += " This mode also requires a WHERE clause on every statement."
		}
		return msg

	case models.ReasonAccessDenied:
		if detail != "" {
			return fmt.Sprintf(
				"Your roles do not grant access to table %s. "+
					"Check with an administrator if you believe this is wrong.", detail)
		}
		return "Your roles do not grant access to one or more tables referenced by this statement."

	case models.ReasonColumnRestricted:
		if detail != "" {
			return fmt.Sprintf(
				"Table %s has column-level restrictions for your roles, so a bare "+
					"SELECT * cannot be allowed. Select the columns you need explicitly.", detail)
		}
		return "A referenced table has column-level restrictions, so a bare SELECT * cannot be allowed."

	default:
		return fmt.Sprintf("The statement was blocked by the %s safety policy.", pol.Mode)
	}
}
