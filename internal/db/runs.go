package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("analysis run not found")

// AnalysisRun is one recorded invocation of the analysis.
type AnalysisRun struct {
	RunID       string
	GeneratedAt time.Time
	SourcePath  string

	HeightCM         int
	WeightKG         int
	HeightSource     string
	EquationHeight   float64
	CalibratedHeight float64

	TotalFrames      int
	OutOfLimitFrames int
	PeakLI           float64
	LookupErrors     int
	ActionGaps       int

	ReportPath string
}

// RunSecond is one persisted report row. Position is its index in the
// report; RecordRun assigns it from slice order.
type RunSecond struct {
	Position        int
	Second          int
	Action          string
	ErrorFrames     int
	ErrorPercentage float64
}

// RecordRun stores run and its report rows in one transaction. An empty
// RunID is filled with a new UUID.
func (db *DB) RecordRun(ctx context.Context, run *AnalysisRun, seconds []RunSecond) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			run_id, generated_unix, source_path, height_cm, weight_kg,
			height_source, equation_height, calibrated_height, total_frames,
			out_of_limit_frames, peak_li, lookup_errors, action_gaps, report_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.GeneratedAt.Unix(), run.SourcePath, run.HeightCM, run.WeightKG,
		run.HeightSource, run.EquationHeight, run.CalibratedHeight, run.TotalFrames,
		run.OutOfLimitFrames, run.PeakLI, run.LookupErrors, run.ActionGaps, run.ReportPath,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_seconds (run_id, position, second, action, error_frames, error_percentage)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare second insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range seconds {
		if _, err := stmt.ExecContext(ctx, run.RunID, i, s.Second, s.Action, s.ErrorFrames, s.ErrorPercentage); err != nil {
			return fmt.Errorf("failed to insert second %d: %w", s.Second, err)
		}
	}

	return tx.Commit()
}

const runColumns = `run_id, generated_unix, source_path, height_cm, weight_kg,
	height_source, equation_height, calibrated_height, total_frames,
	out_of_limit_frames, peak_li, lookup_errors, action_gaps, report_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*AnalysisRun, error) {
	var r AnalysisRun
	var generated int64
	err := row.Scan(&r.RunID, &generated, &r.SourcePath, &r.HeightCM, &r.WeightKG,
		&r.HeightSource, &r.EquationHeight, &r.CalibratedHeight, &r.TotalFrames,
		&r.OutOfLimitFrames, &r.PeakLI, &r.LookupErrors, &r.ActionGaps, &r.ReportPath)
	if err != nil {
		return nil, err
	}
	r.GeneratedAt = time.Unix(generated, 0).UTC()
	return &r, nil
}

// GetRun loads one run by id.
func (db *DB) GetRun(ctx context.Context, runID string) (*AnalysisRun, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return r, nil
}

// ListRecentRuns returns up to limit runs, newest first.
func (db *DB) ListRecentRuns(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs ORDER BY generated_unix DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// SecondsForRun returns the report rows of a run in report order.
func (db *DB) SecondsForRun(ctx context.Context, runID string) ([]RunSecond, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT position, second, action, error_frames, error_percentage
		FROM analysis_seconds WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seconds for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []RunSecond
	for rows.Next() {
		var s RunSecond
		if err := rows.Scan(&s.Position, &s.Second, &s.Action, &s.ErrorFrames, &s.ErrorPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan second: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its rows.
func (db *DB) DeleteRun(ctx context.Context, runID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM analysis_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
