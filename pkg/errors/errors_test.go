package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	err := New(CodePolicyViolation, "command DROP is not allowed")
	assert.Equal(t, "POLICY_VIOLATION: command DROP is not allowed", err.Error())

	wrapped := Wrap(fmt.Errorf("boom"), CodeParseError, "could not parse statement")
	assert.Contains(t, wrapped.Error(), "PARSE_ERROR")
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestValidationError_Is(t *testing.T) {
	err := Newf(CodeAccessDenied, "table %s is not accessible", "products")
	assert.True(t, errors.Is(err, &ValidationError{Code: CodeAccessDenied}))
	assert.False(t, errors.Is(err, ErrEmptyQuery))
}

func TestValidationError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(cause, CodeExecutionFailed, "query failed")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, CodeInternal, "ignored %d", 1))
}

func TestGetCodeAndMessage(t *testing.T) {
	err := New(CodeColumnRestricted, "wildcard not allowed against customers")
	assert.Equal(t, CodeColumnRestricted, GetCode(err))
	assert.Equal(t, "wildcard not allowed against customers", GetMessage(err))

	plain := fmt.Errorf("plain error")
	assert.Equal(t, CodeInternal, GetCode(plain))
	assert.Equal(t, "plain error", GetMessage(plain))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsParseError(New(CodeParseError, "bad token")))
	assert.True(t, IsPolicyViolation(New(CodePolicyViolation, "no WHERE clause")))
	assert.True(t, IsAccessDenied(New(CodeAccessDenied, "no access")))
	assert.False(t, IsAccessDenied(ErrEmptyQuery))
}

func TestWithDetail(t *testing.T) {
	err := New(CodeAccessDenied, "no access").WithDetail("table", "salaries")
	require.NotNil(t, err.Details)
	assert.Equal(t, "salaries", err.Details["table"])
}
