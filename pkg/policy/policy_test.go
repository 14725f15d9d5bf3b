package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlward/sqlward/pkg/errors"
	"github.com/sqlward/sqlward/pkg/sqlparse"
)

func TestGet_CanonicalModes(t *testing.T) {
	strict, err := Get("strict")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, strict.Mode)
	assert.Equal(t, 100, strict.MaxRows)
	assert.False(t, strict.AllowJoins)
	assert.False(t, strict.AllowSubqueries)
	assert.True(t, strict.RequireWhereClause)
	assert.True(t, strict.Allows(sqlparse.CommandSelect))
	assert.False(t, strict.Allows(sqlparse.CommandCTESelect))
	assert.True(t, strict.ForbidsFunction("sleep"))
	assert.True(t, strict.ForbidsFunction("RANDOM"))
	assert.True(t, strict.ForbidsFunction("pg_sleep"))

	moderate, err := Get("moderate")
	require.NoError(t, err)
	assert.Equal(t, 1000, moderate.MaxRows)
	assert.True(t, moderate.AllowJoins)
	assert.True(t, moderate.Allows(sqlparse.CommandCTESelect))
	assert.False(t, moderate.Allows(sqlparse.CommandMutating))
	assert.False(t, moderate.ForbidsFunction("RANDOM"))
	assert.False(t, moderate.RequireWhereClause)

	permissive, err := Get("permissive")
	require.NoError(t, err)
	assert.Equal(t, 10000, permissive.MaxRows)
	assert.True(t, permissive.Allows(sqlparse.CommandMutating))
	assert.True(t, permissive.Allows(sqlparse.CommandDestructiveDDL))
	assert.False(t, permissive.Allows(sqlparse.CommandPrivilege))
	assert.False(t, permissive.ForbidsFunction("SLEEP"))
}

func TestGet_NameNormalization(t *testing.T) {
	for _, name := range []string{"STRICT", " Strict ", "strict"} {
		p, err := Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, ModeStrict, p.Mode)
	}
}

func TestGet_UnknownModeIsContractViolation(t *testing.T) {
	_, err := Get("lenient")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidMode, errors.GetCode(err))
}

func TestGet_ReturnsIndependentCopies(t *testing.T) {
	first, err := Get("strict")
	require.NoError(t, err)
	first.AllowedCommands[sqlparse.CommandDestructiveDDL] = true
	first.ForbiddenFunctions["SLEEP"] = false

	second, err := Get("strict")
	require.NoError(t, err)
	assert.False(t, second.Allows(sqlparse.CommandDestructiveDDL))
	assert.True(t, second.ForbidsFunction("SLEEP"))
}

func TestUnknownCommandNeverAllowed(t *testing.T) {
	for _, mode := range []string{"strict", "moderate", "permissive"} {
		p, err := Get(mode)
		require.NoError(t, err)
		assert.False(t, p.Allows(sqlparse.CommandUnknown), mode)
	}
}

func TestAllowedCommandNames(t *testing.T) {
	moderate, err := Get("moderate")
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT", "CTE_SELECT"}, moderate.AllowedCommandNames())
}
