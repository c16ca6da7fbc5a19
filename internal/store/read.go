package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = `id, seq, request_hash, family, source, target, config, status, error_code, error_message, duration_ms`

// ReadRun returns a run with its results, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}

	if run.Results, err = s.readResults(ctx, run.ID); err != nil {
		return Run{}, err
	}
	return run, nil
}

// FindSolved returns the latest solved run with the given request hash.
// The boolean is false if no such run exists.
func (s *Store) FindSolved(ctx context.Context, requestHash string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE request_hash = ? AND status = ?
		ORDER BY seq DESC, id COLLATE BINARY ASC
		LIMIT 1
	`, requestHash, string(RunSolved))

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("find solved run: %w", err)
	}

	if run.Results, err = s.readResults(ctx, run.ID); err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// ListRuns returns the most recent runs first, with their results.
// A limit of zero or less returns every run.
//
// Returns an empty slice (not nil) if the archive is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Results are read after the cursor is closed: the pool holds a single
	// connection.
	rows.Close()
	for i := range runs {
		if runs[i].Results, err = s.readResults(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// ListVerifications returns the most recent verifications first.
// A limit of zero or less returns every verification.
func (s *Store) ListVerifications(ctx context.Context, limit int) ([]Verification, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, family, path, valid, error_code, message
		FROM verifications
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query verifications: %w", err)
	}
	defer rows.Close()

	verifications := []Verification{}
	for rows.Next() {
		var v Verification
		if err := rows.Scan(&v.Seq, &v.Family, &v.Path, &v.Valid, &v.ErrorCode, &v.Message); err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		verifications = append(verifications, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}
	return verifications, nil
}

func (s *Store) readResults(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, stages, recipes
		FROM results
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Path, &r.Stages, &r.Recipes); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		status     string
		durationMS int64
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.RequestHash,
		&run.Family,
		&run.Source,
		&run.Target,
		&run.Config,
		&status,
		&run.ErrorCode,
		&run.ErrorMessage,
		&durationMS,
	)
	if err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}
