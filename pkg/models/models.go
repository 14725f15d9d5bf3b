// Package models contains domain models shared across the safety engine.
package models

import (
	"time"
)

// ReasonCategory identifies why a statement was rejected.
type ReasonCategory int

const (
	ReasonNone ReasonCategory = iota
	ReasonEmpty
	ReasonParseError
	ReasonMultipleStatements
	ReasonPolicyViolation
	ReasonAccessDenied
	ReasonColumnRestricted
)

// String returns the string representation of the reason category.
func (r ReasonCategory) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEmpty:
		return "empty"
	case ReasonParseError:
		return "parse_error"
	case ReasonMultipleStatements:
		return "multiple_statements"
	case ReasonPolicyViolation:
		return "policy_violation"
	case ReasonAccessDenied:
		return "access_denied"
	case ReasonColumnRestricted:
		return "column_restricted"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the reason as its string form.
func (r ReasonCategory) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// ValidationRequest carries one candidate statement through the engine.
type ValidationRequest struct {
	SQL                 string   `json:"sql"`
	Roles               []string `json:"roles"`
	MayExecuteDangerous bool     `json:"may_execute_dangerous"`
	Mode                string   `json:"mode"`
}

// ValidationResult is the structured outcome of a single validation call.
// It is produced per call and never persisted by the engine itself.
type ValidationResult struct {
	IsValid        bool           `json:"is_valid"`
	Reason         ReasonCategory `json:"reason"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	TablesAccessed []string       `json:"tables_accessed,omitempty"`
	Explanation    string         `json:"explanation,omitempty"`
}

// Valid constructs a successful result over the given tables.
func Valid(tables []string) ValidationResult {
	return ValidationResult{
		IsValid:        true,
		Reason:         ReasonNone,
		TablesAccessed: tables,
	}
}

// Rejected constructs a terminal rejection with the given reason and message.
func Rejected(reason ReasonCategory, message string) ValidationResult {
	return ValidationResult{
		IsValid:      false,
		Reason:       reason,
		ErrorMessage: message,
	}
}

// QueryResult holds rows returned by the gated executor.
type QueryResult struct {
	Columns   []string        `json:"columns"`
	Rows      [][]interface{} `json:"rows"`
	RowCount  int             `json:"row_count"`
	Truncated bool            `json:"truncated"`
	Duration  time.Duration   `json:"duration"`
}

// AuditRecord captures a validation decision for the audit collaborator.
type AuditRecord struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Username  string           `json:"username"`
	Roles     []string         `json:"roles"`
	Mode      string           `json:"mode"`
	Query     string           `json:"query"`
	Result    ValidationResult `json:"result"`
}
