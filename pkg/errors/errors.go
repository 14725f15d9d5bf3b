// Package errors provides standardized error types for the SQL safety engine.
package errors

import (
	"errors"
	"fmt"
)

// Error codes matching the validation reason taxonomy plus collaborator failures.
const (
	CodeEmptyQuery         = "EMPTY_QUERY"
	CodeParseError         = "PARSE_ERROR"
	CodeMultipleStatements = "MULTIPLE_STATEMENTS"
	CodePolicyViolation    = "POLICY_VIOLATION"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeColumnRestricted   = "COLUMN_RESTRICTED"
	CodeInvalidMode        = "INVALID_MODE"
	CodeInvalidHierarchy   = "INVALID_HIERARCHY"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeExecutionFailed    = "EXECUTION_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ValidationError represents a safety-engine error with code, message, and optional details.
type ValidationError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by code.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a single detail to the error.
func (e *ValidationError) WithDetail(key string, value interface{}) *ValidationError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common errors
var (
	ErrEmptyQuery         = &ValidationError{Code: CodeEmptyQuery, Message: "query is empty"}
	ErrMultipleStatements = &ValidationError{Code: CodeMultipleStatements, Message: "multiple statements are not allowed"}
	ErrInvalidMode        = &ValidationError{Code: CodeInvalidMode, Message: "unknown safety mode"}
	ErrInvalidHierarchy   = &ValidationError{Code: CodeInvalidHierarchy, Message: "role hierarchy contains a cycle"}
	ErrUnauthorized       = &ValidationError{Code: CodeUnauthorized, Message: "invalid or missing credentials"}
)

// New creates a new ValidationError with the given code and message.
func New(code, message string) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new ValidationError with a formatted message.
func Newf(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a ValidationError.
func Wrap(err error, code, message string) *ValidationError {
	if err == nil {
		return nil
	}
	return &ValidationError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *ValidationError {
	if err == nil {
		return nil
	}
	return &ValidationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsParseError checks if an error is a parse error.
func IsParseError(err error) bool {
	return GetCode(err) == CodeParseError
}

// IsPolicyViolation checks if an error is a policy violation.
func IsPolicyViolation(err error) bool {
	return GetCode(err) == CodePolicyViolation
}

// IsAccessDenied checks if an error is an access denial.
func IsAccessDenied(err error) bool {
	return GetCode(err) == CodeAccessDenied
}

// GetCode extracts the error code from an error.
func GetCode(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return CodeInternal
}

// GetMessage extracts the error message from an error.
func GetMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
