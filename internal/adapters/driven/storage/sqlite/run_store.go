package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
)

// timeFormat is fixed width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, started_at, ended_at, total, attempted, succeeded, cancelled,
	outputs, quality, lossless, output_dir, policy, workers`

// Save stores or replaces a run and its failures.
func (s *runStore) Save(ctx context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID() == "" {
		return domain.ErrInvalidInput
	}
	summary := run.Summary

	outputs := summary.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	outputsJSON, err := json.Marshal(outputs)
	if err != nil {
		return fmt.Errorf("marshalling outputs: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			total = excluded.total,
			attempted = excluded.attempted,
			succeeded = excluded.succeeded,
			cancelled = excluded.cancelled,
			outputs = excluded.outputs,
			quality = excluded.quality,
			lossless = excluded.lossless,
			output_dir = excluded.output_dir,
			policy = excluded.policy,
			workers = excluded.workers
	`, run.ID(), formatTime(summary.StartedAt), formatNullableTime(summary.EndedAt),
		summary.Total, summary.Attempted, summary.Succeeded, boolToInt(summary.Cancelled),
		string(outputsJSON), run.Options.Quality, boolToInt(run.Options.Lossless),
		run.Options.OutputDirectory, run.Policy.String(), run.Workers)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_failures WHERE run_id = ?", run.ID()); err != nil {
		return fmt.Errorf("clearing run failures: %w", err)
	}
	for i, f := range summary.Failures {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_failures (run_id, position, source, kind, cause)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID(), i, f.Source, string(f.Kind), nullString(f.Cause))
		if err != nil {
			return fmt.Errorf("saving run failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadFailures(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns recent runs, most recent first.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		if err := s.loadFailures(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Prune removes all but the most recent keep runs.
func (s *runStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.store.db.ExecContext(ctx, `
		DELETE FROM runs
		WHERE id NOT IN (
			SELECT id FROM runs
			ORDER BY started_at DESC, rowid DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return int(removed), nil
}

func (s *runStore) loadFailures(ctx context.Context, run *domain.RunRecord) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source, kind, cause
		FROM run_failures
		WHERE run_id = ?
		ORDER BY position
	`, run.ID())
	if err != nil {
		return fmt.Errorf("querying run failures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f domain.Failure
		var kind string
		var cause sql.NullString
		if err := rows.Scan(&f.Source, &kind, &cause); err != nil {
			return fmt.Errorf("scanning run failure: %w", err)
		}
		f.Kind = domain.ErrorKind(kind)
		if cause.Valid {
			f.Cause = cause.String
		}
		run.Summary.Failures = append(run.Summary.Failures, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating run failures: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans a run row without its failures.
func scanRun(row rowScanner) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var startedAt string
	var endedAt sql.NullString
	var cancelled, lossless int
	var outputsJSON, policy string

	err := row.Scan(&run.Summary.RunID, &startedAt, &endedAt,
		&run.Summary.Total, &run.Summary.Attempted, &run.Summary.Succeeded, &cancelled,
		&outputsJSON, &run.Options.Quality, &lossless, &run.Options.OutputDirectory,
		&policy, &run.Workers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if t, err := time.Parse(timeFormat, startedAt); err == nil {
		run.Summary.StartedAt = t
	}
	run.Summary.EndedAt = parseNullableTime(endedAt)
	run.Summary.Cancelled = cancelled == 1
	run.Options.Lossless = lossless == 1
	run.Policy = domain.Policy(policy)

	if err := json.Unmarshal([]byte(outputsJSON), &run.Summary.Outputs); err != nil {
		return nil, fmt.Errorf("unmarshalling outputs: %w", err)
	}
	if len(run.Summary.Outputs) == 0 {
		run.Summary.Outputs = nil
	}
	return &run, nil
}

// formatTime formats t in UTC with a fixed width.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// formatNullableTime formats a time, or returns nil for zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime parses a nullable timestamp.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeFormat, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
