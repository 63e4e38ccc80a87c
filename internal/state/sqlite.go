package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapprep/internal/pipeline"

	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStore implements Store on modernc.org/sqlite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database, creating its directory if
// needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.logger.Debug("opened state store", slog.String("path", path))
	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

// CreateRun inserts a run in the running state.
func (s *SQLiteStore) CreateRun(ctx context.Context, source string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Source:    source,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("source", source))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		status      string
		startedAt   string
		completedAt sql.NullString
		errMsg      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Source, &status, &startedAt, &completedAt, &errMsg); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)

	var err error
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at %q: %w", completedAt.String, err)
		}
		run.CompletedAt = &t
	}
	run.Error = errMsg.String
	return &run, nil
}

const runColumns = `id, source, status, started_at, completed_at, error`

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run as finished with the given status.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var errValue sql.NullString
	if errMsg != "" {
		errValue = sql.NullString{String: errMsg, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), errValue, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecordStep appends a step to a run. Steps keep the order they were
// recorded in.
func (s *SQLiteStore) RecordStep(ctx context.Context, runID string, step pipeline.StepStat) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_steps (run_id, seq, step, rows_in, rows_out, cols_in, cols_out, duration_ns, detail)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM run_steps WHERE run_id = ?), ?, ?, ?, ?, ?, ?, ?)`,
		runID, runID, step.Step, step.RowsIn, step.RowsOut, step.ColsIn, step.ColsOut,
		step.Duration.Nanoseconds(), step.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", step.Step, err)
	}
	return nil
}

// ListSteps returns the steps of a run in execution order.
func (s *SQLiteStore) ListSteps(ctx context.Context, runID string) ([]pipeline.StepStat, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT step, rows_in, rows_out, cols_in, cols_out, duration_ns, detail
		FROM run_steps WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []pipeline.StepStat
	for rows.Next() {
		var (
			st pipeline.StepStat
			ns int64
		)
		if err := rows.Scan(&st.Step, &st.RowsIn, &st.RowsOut, &st.ColsIn, &st.ColsOut, &ns, &st.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		st.Duration = time.Duration(ns)
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// StartRun implements pipeline.Recorder.
func (s *SQLiteStore) StartRun(ctx context.Context, source string) (string, error) {
	run, err := s.CreateRun(ctx, source)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// FinishRun implements pipeline.Recorder. The run is closed even when ctx
// has been canceled.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, runErr error) error {
	ctx = context.WithoutCancel(ctx)
	if runErr != nil {
		return s.CompleteRun(ctx, runID, RunStatusFailed, runErr.Error())
	}
	return s.CompleteRun(ctx, runID, RunStatusCompleted, "")
}

var (
	_ Store             = (*SQLiteStore)(nil)
	_ pipeline.Recorder = (*SQLiteStore)(nil)
)
