// Package audit records validation decisions so operators can reconstruct
// who asked to run what, under which mode, and what the engine decided.
package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sqlward/sqlward/pkg/models"
)

// Recorder persists validation decisions.
type Recorder interface {
	// Record stores one decision. Implementations must not mutate the record.
	Record(rec models.AuditRecord)
}

// LogRecorder writes audit records as structured log events. It assigns each
// record a unique ID and stamps it if the caller did not.
type LogRecorder struct {
	logger zerolog.Logger
}

// NewLogRecorder creates a recorder that emits audit events on the given
// logger.
func NewLogRecorder(logger zerolog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// Record implements Recorder.
func (r *LogRecorder) Record(rec models.AuditRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	event := r.logger.Info()
	if !rec.Result.IsValid {
		event = r.logger.Warn()
	}
	event.
		Str("audit_id", rec.ID).
		Time("timestamp", rec.Timestamp).
		Str("username", rec.Username).
		Strs("roles", rec.Roles).
		Str("mode", rec.Mode).
		Str("query", rec.Query).
		Bool("valid", rec.Result.IsValid).
		Str("reason", rec.Result.Reason.String()).
		Msg("validation decision")
}

// NopRecorder discards all records.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(models.AuditRecord) {}
