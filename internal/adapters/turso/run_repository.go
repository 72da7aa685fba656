// Package turso persists study runs to a libsql database.
package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"covarsim/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	units INTEGER NOT NULL,
	trials INTEGER NOT NULL,
	mode TEXT NOT NULL,
	seed INTEGER NOT NULL,
	bias_strength REAL NOT NULL,
	retries INTEGER NOT NULL,
	mean_cov REAL NOT NULL,
	mean_unadjusted REAL NOT NULL,
	mean_adjusted REAL NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trial_results (
	run_id TEXT NOT NULL REFERENCES runs(id),
	idx INTEGER NOT NULL,
	cov REAL NOT NULL,
	unadjusted_ate REAL NOT NULL,
	adjusted_ate REAL NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// RunRepository implements ports.RunRepository on libsql.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// EnsureSchema creates the tables when they do not exist yet.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun stores the run and its trial results in one transaction.
func (r *RunRepository) SaveRun(ctx context.Context, run *domain.Run, results domain.ResultCollection) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, units, trials, mode, seed, bias_strength, retries,
			mean_cov, mean_unadjusted, mean_adjusted, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Params.Units,
		run.Params.Trials,
		string(run.Params.Mode),
		int64(run.Params.Seed),
		run.Params.BiasStrength,
		run.Retries,
		run.Summary.MeanCov,
		run.Summary.MeanUnadjusted,
		run.Summary.MeanAdjusted,
		run.StartedAt.Format(time.RFC3339),
		run.FinishedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trial_results (run_id, idx, cov, unadjusted_ate, adjusted_ate)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trial insert: %w", err)
	}
	defer stmt.Close()

	for i, tr := range results {
		if _, err := stmt.ExecContext(ctx, run.ID, i, tr.Cov, tr.UnadjustedATE, tr.AdjustedATE); err != nil {
			return fmt.Errorf("insert trial %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// GetRun returns a run by ID, or nil when it does not exist.
func (r *RunRepository) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, units, trials, mode, seed, bias_strength, retries,
		       mean_cov, mean_unadjusted, mean_adjusted, started_at, finished_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns all stored runs, most recent first.
func (r *RunRepository) ListRuns(ctx context.Context) ([]*domain.Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, units, trials, mode, seed, bias_strength, retries,
		       mean_cov, mean_unadjusted, mean_adjusted, started_at, finished_at
		FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetTrials returns the trial results of a run in trial order.
func (r *RunRepository) GetTrials(ctx context.Context, runID string) (domain.ResultCollection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cov, unadjusted_ate, adjusted_ate
		FROM trial_results WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("get trials: %w", err)
	}
	defer rows.Close()

	var results domain.ResultCollection
	for rows.Next() {
		var tr domain.TrialResult
		if err := rows.Scan(&tr.Cov, &tr.UnadjustedATE, &tr.AdjustedATE); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		results = append(results, tr)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var (
		run        domain.Run
		mode       string
		seed       int64
		startedAt  string
		finishedAt string
	)
	err := row.Scan(
		&run.ID,
		&run.Params.Units,
		&run.Params.Trials,
		&mode,
		&seed,
		&run.Params.BiasStrength,
		&run.Retries,
		&run.Summary.MeanCov,
		&run.Summary.MeanUnadjusted,
		&run.Summary.MeanAdjusted,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Params.Mode = domain.AssignmentMode(mode)
	run.Params.Seed = uint64(seed)
	run.Summary.Trials = run.Params.Trials
	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}
