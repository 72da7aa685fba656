package turso

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"covarsim/internal/database"
	"covarsim/internal/domain"
)

func testRepo(t *testing.T) *RunRepository {
	t.Helper()

	db, err := database.New("file:"+filepath.Join(t.TempDir(), "covarsim.db"), "")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRunRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repo
}

func testRun(id string, seed uint64) (*domain.Run, domain.ResultCollection) {
	results := domain.ResultCollection{
		{Cov: 0.05, UnadjustedATE: 2.4, AdjustedATE: 2.1},
		{Cov: -0.02, UnadjustedATE: 1.8, AdjustedATE: 1.95},
		{Cov: 0.0, UnadjustedATE: 2.0, AdjustedATE: 2.0},
	}
	run := &domain.Run{
		ID: id,
		Params: domain.Params{
			Units: 20, Trials: len(results), Mode: domain.ModeIndependent,
			Seed: seed, BiasStrength: 0,
		},
		StartedAt:  time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 20, 10, 0, 2, 0, time.UTC),
		Retries:    1,
		Summary:    results.Summarize(),
	}
	return run, results
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	run, results := testRun("run-1", 42)
	if err := repo.SaveRun(ctx, run, results); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, err := repo.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got == nil {
		t.Fatal("run not found")
	}
	if got.Params != run.Params {
		t.Errorf("params = %+v, want %+v", got.Params, run.Params)
	}
	if got.Retries != run.Retries {
		t.Errorf("retries = %d, want %d", got.Retries, run.Retries)
	}
	if !got.StartedAt.Equal(run.StartedAt) || !got.FinishedAt.Equal(run.FinishedAt) {
		t.Errorf("timestamps = %v/%v, want %v/%v", got.StartedAt, got.FinishedAt, run.StartedAt, run.FinishedAt)
	}

	trials, err := repo.GetTrials(ctx, "run-1")
	if err != nil {
		t.Fatalf("get trials: %v", err)
	}
	if len(trials) != len(results) {
		t.Fatalf("trials = %d, want %d", len(trials), len(results))
	}
	for i := range results {
		if trials[i] != results[i] {
			t.Errorf("trial %d = %+v, want %+v", i, trials[i], results[i])
		}
	}
}

func TestRunRepository_GetMissingRun(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.GetRun(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestRunRepository_GetRunBadTimestamp(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, units, trials, mode, seed, bias_strength, retries,
			mean_cov, mean_unadjusted, mean_adjusted, started_at, finished_at
		) VALUES ('run-bad', 20, 3, 'independent', 42, 0, 0, 0, 2, 2, 'yesterday-ish', 'yesterday-ish')`)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := repo.GetRun(ctx, "run-bad"); err == nil || !strings.Contains(err.Error(), "parse started_at") {
		t.Errorf("err = %v, want started_at parse failure", err)
	}
}

func TestRunRepository_ListRuns(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	older, olderResults := testRun("run-old", 1)
	older.StartedAt = time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	newer, newerResults := testRun("run-new", 2)

	if err := repo.SaveRun(ctx, older, olderResults); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveRun(ctx, newer, newerResults); err != nil {
		t.Fatal(err)
	}

	runs, err := repo.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-new" || runs[1].ID != "run-old" {
		t.Errorf("order = [%s, %s], want most recent first", runs[0].ID, runs[1].ID)
	}
}
