// Package executor runs statements that passed validation against DuckDB.
// It never executes a statement that has not been through the engine, and it
// enforces the policy row cap at fetch time instead of rewriting SQL.
package executor

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/rs/zerolog"

	"github.com/sqlward/sqlward/pkg/engine"
	"github.com/sqlward/sqlward/pkg/errors"
	"github.com/sqlward/sqlward/pkg/metrics"
	"github.com/sqlward/sqlward/pkg/models"
	"github.com/sqlward/sqlward/pkg/policy"
)

// Executor validates and runs SQL against a single DuckDB database.
type Executor struct {
	db      *sql.DB
	engine  *engine.Engine
	logger  zerolog.Logger
	metrics metrics.Collector
}

// New opens the DuckDB database at path (":memory:" or "" for in-memory) and
// wires it to the given validation engine.
func New(path string, eng *engine.Engine, logger zerolog.Logger, collector metrics.Collector) (*Executor, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExecutionFailed, "failed to open database")
	}
	if collector == nil {
		collector = metrics.NewNoOpCollector()
	}
	return &Executor{db: db, engine: eng, logger: logger, metrics: collector}, nil
}

// NewWithDB wraps an existing database handle. The caller keeps ownership of
// the handle's lifecycle.
func NewWithDB(db *sql.DB, eng *engine.Engine, logger zerolog.Logger, collector metrics.Collector) *Executor {
	if collector == nil {
		collector = metrics.NewNoOpCollector()
	}
	return &Executor{db: db, engine: eng, logger: logger, metrics: collector}
}

// Close releases the database handle.
func (e *Executor) Close() error {
	return e.db.Close()
}

// Execute validates the request and, only if it passes every gate, runs it.
// A rejection is returned as an error carrying the decision's reason code;
// the caller can still inspect the full decision in the returned result.
func (e *Executor) Execute(ctx context.Context, req models.ValidationRequest) (models.ValidationResult, *models.QueryResult, error) {
	decision, err := e.engine.Validate(req)
	if err != nil {
		return models.ValidationResult{}, nil, err
	}
	if !decision.IsValid {
		return decision, nil, errors.New(codeFor(decision.Reason), decision.ErrorMessage)
	}

	pol, err := policy.Get(req.Mode)
	if err != nil {
		return decision, nil, err
	}

	rows, err := e.query(ctx, req.SQL, pol.MaxRows)
	if err != nil {
		e.logger.Error().Err(err).Msg("query execution failed")
		return decision, nil, err
	}

	e.metrics.IncrementCounter("sql_executions_total", "mode", req.Mode)
	e.logger.Debug().
		Int("rows", rows.RowCount).
		Bool("truncated", rows.Truncated).
		Dur("duration", rows.Duration).
		Msg("query executed")

	return decision, rows, nil
}

// query runs the statement and fetches at most maxRows rows. The statement
// text is passed through untouched.
func (e *Executor) query(ctx context.Context, sqlText string, maxRows int) (*models.QueryResult, error) {
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExecutionFailed, "query failed")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExecutionFailed, "failed to read columns")
	}

	result := &models.QueryResult{Columns: columns}
	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if result.RowCount >= maxRows {
			result.Truncated = true
			break
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, errors.Wrap(err, errors.CodeExecutionFailed, "failed to scan row")
		}
		row := make([]interface{}, len(columns))
		copy(row, values)
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeExecutionFailed, "row iteration failed")
	}

	result.Duration = time.Since(start)
	return result, nil
}

// codeFor maps a rejection reason to its error code.
func codeFor(reason models.ReasonCategory) string {
	switch reason {
	case models.ReasonEmpty:
		return errors.CodeEmptyQuery
	case models.ReasonParseError:
		return errors.CodeParseError
	case models.ReasonMultipleStatements:
		return errors.CodeMultipleStatements
	case models.ReasonAccessDenied:
		return errors.CodeAccessDenied
	case models.ReasonColumnRestricted:
		return errors.CodeColumnRestricted
	default:
		return errors.CodePolicyViolation
	}
}
