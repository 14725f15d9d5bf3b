package audit

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlward/sqlward/pkg/models"
)

func TestLogRecorder_EmitsStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	recorder := NewLogRecorder(zerolog.New(&buf))

	recorder.Record(models.AuditRecord{
		Username: "alice",
		Roles:    []string{"viewer"},
		Mode:     "strict",
		Query:    "SELECT * FROM sales WHERE id = 1",
		Result:   models.Valid([]string{"sales"}),
	})

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))

	assert.Equal(t, "info", event["level"])
	assert.Equal(t, "alice", event["username"])
	assert.Equal(t, "strict", event["mode"])
	assert.Equal(t, true, event["valid"])
	assert.NotEmpty(t, event["audit_id"])
	assert.NotEmpty(t, event["timestamp"])
}

func TestLogRecorder_RejectionsLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	recorder := NewLogRecorder(zerolog.New(&buf))

	recorder.Record(models.AuditRecord{
		Username: "bob",
		Mode:     "strict",
		Query:    "DROP TABLE sales;",
		Result:   models.Rejected(models.ReasonPolicyViolation, "query contains forbidden keyword: DROP"),
	})

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))

	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, false, event["valid"])
	assert.Equal(t, models.ReasonPolicyViolation.String(), event["reason"])
}

func TestLogRecorder_PreservesCallerID(t *testing.T) {
	var buf bytes.Buffer
	recorder := NewLogRecorder(zerolog.New(&buf))

	recorder.Record(models.AuditRecord{ID: "fixed-id", Query: "SELECT 1"})

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "fixed-id", event["audit_id"])
}
