package store

import (
	"context"
	"fmt"
)

// WriteRun archives a run and its results in one transaction.
//
// If run.ID is empty an ID is generated. Seq is always assigned by the
// store. The stored run is returned.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.runID.Generate()
	}
	if run.Status != RunSolved && run.Status != RunFailed {
		return Run{}, fmt.Errorf("write run: invalid status %q", run.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, request_hash, family, source, target, config, status, error_code, error_message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.RequestHash,
		run.Family,
		run.Source,
		run.Target,
		run.Config,
		string(run.Status),
		run.ErrorCode,
		run.ErrorMessage,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	for i, r := range run.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results (run_id, position, path, stages, recipes)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, i, r.Path, r.Stages, r.Recipes)
		if err != nil {
			return Run{}, fmt.Errorf("write run: result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// WriteVerification archives a verification outcome and returns its seq.
// seq is the rowid, so it increases with every insert.
func (s *Store) WriteVerification(ctx context.Context, v Verification) (int64, error) {
	valid := 0
	if v.Valid {
		valid = 1
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications (family, path, valid, error_code, message)
		VALUES (?, ?, ?, ?, ?)
	`, v.Family, v.Path, valid, v.ErrorCode, v.Message)
	if err != nil {
		return 0, fmt.Errorf("write verification: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write verification: %w", err)
	}
	return seq, nil
}
