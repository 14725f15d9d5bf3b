// Package sqlparse provides the statement splitter, lightweight parser,
// classifier, and table/column extractor for the safety engine. It extracts
// just enough SQL structure to enforce policy decisions; it is not a full
// SQL compiler and fails closed on constructs it does not recognize.
package sqlparse

import "strings"

// Command is the policy-relevant category of a SQL statement.
type Command int

const (
	CommandUnknown Command = iota
	CommandSelect
	CommandCTESelect          // WITH ... SELECT
	CommandMutating           // INSERT, UPDATE, DELETE, MERGE, REPLACE
	CommandDestructiveDDL     // DROP, TRUNCATE, ALTER
	CommandPrivilege          // GRANT, REVOKE
	CommandTransactionControl // COMMIT, ROLLBACK, SAVEPOINT
)

// String returns the string representation of the command category.
func (c Command) String() string {
	switch c {
	case CommandSelect:
		return "SELECT"
	case CommandCTESelect:
		return "CTE_SELECT"
	case CommandMutating:
		return "MUTATING"
	case CommandDestructiveDDL:
		return "DESTRUCTIVE_DDL"
	case CommandPrivilege:
		return "PRIVILEGE"
	case CommandTransactionControl:
		return "TRANSACTION_CONTROL"
	default:
		return "UNKNOWN"
	}
}

// Classify maps a leading statement keyword to a command category.
// A leading WITH classifies as CTE_SELECT only when the statement carries a
// terminal top-level SELECT; everything unrecognized stays UNKNOWN, which no
// policy allows by default.
func Classify(leading string, hasTopLevelSelect bool) Command {
	switch strings.ToUpper(leading) {
	case "SELECT":
		return CommandSelect
	case "WITH":
		if hasTopLevelSelect {
			return CommandCTESelect
		}
		return CommandUnknown
	case "INSERT", "UPDATE", "DELETE", "MERGE", "REPLACE":
		return CommandMutating
	case "DROP", "TRUNCATE", "ALTER":
		return CommandDestructiveDDL
	case "GRANT", "REVOKE":
		return CommandPrivilege
	case "COMMIT", "ROLLBACK", "SAVEPOINT":
		return CommandTransactionControl
	default:
		return CommandUnknown
	}
}
