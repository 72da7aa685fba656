package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"covarsim/internal/domain"
)

// maxRetriesPerTrial bounds how often a degenerate trial is redrawn before
// the run is aborted. At the configurations this tool targets a redraw is
// rare; exhausting the budget means the configuration itself is pathological
// (extreme bias strength at tiny n).
const maxRetriesPerTrial = 100

// workerSeedStride separates per-worker random streams. Fibonacci hashing
// constant, so consecutive worker indices land far apart in seed space.
const workerSeedStride = 0x9E3779B97F4A7C15

// RunStats carries operational counters from one study run.
type RunStats struct {
	Retries  int // degenerate trials redrawn
	Duration time.Duration
}

// Run executes p.Trials independent generate-analyze repetitions over a
// single deterministic stream seeded from p.Seed. Identical params produce
// bit-identical collections.
//
// Failure policy: a trial whose dataset turns out degenerate is redrawn from
// the same stream rather than propagated, so the collection always holds
// exactly p.Trials results. Redraws are counted in RunStats. A trial still
// degenerate after maxRetriesPerTrial redraws aborts the whole run with the
// wrapped error; nothing is dropped silently.
func Run(ctx context.Context, p domain.Params) (domain.ResultCollection, RunStats, error) {
	var stats RunStats
	if err := p.Validate(); err != nil {
		return nil, stats, err
	}

	start := time.Now()
	gen := NewGenerator(p.Seed, p.BiasStrength)
	results := make(domain.ResultCollection, 0, p.Trials)
	for i := 0; i < p.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		r, redraws, err := runTrial(gen, p)
		stats.Retries += redraws
		if err != nil {
			return nil, stats, fmt.Errorf("trial %d: %w", i, err)
		}
		results = append(results, r)
	}
	stats.Duration = time.Since(start)
	return results, stats, nil
}

// RunParallel fans the trial loop out over workers goroutines. Each worker
// owns an independently seeded stream and writes into its own slice range,
// so results are order-stable and reproducible for a fixed worker count
// (the stream layout differs from the sequential driver's, so sequential
// and parallel runs of the same seed are not comparable draw for draw).
func RunParallel(ctx context.Context, p domain.Params, workers int) (domain.ResultCollection, RunStats, error) {
	var stats RunStats
	if err := p.Validate(); err != nil {
		return nil, stats, err
	}
	if workers <= 1 {
		return Run(ctx, p)
	}
	if workers > p.Trials {
		workers = p.Trials
	}

	start := time.Now()
	results := make(domain.ResultCollection, p.Trials)
	retries := make([]int, workers)
	per := (p.Trials + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * per
		hi := min(lo+per, p.Trials)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			gen := NewGenerator(p.Seed+uint64(w)*workerSeedStride, p.BiasStrength)
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				r, redraws, err := runTrial(gen, p)
				retries[w] += redraws
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				results[i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	for _, r := range retries {
		stats.Retries += r
	}
	stats.Duration = time.Since(start)
	return results, stats, nil
}

// runTrial generates and analyzes one dataset, redrawing on degenerate
// designs up to the retry budget. Returns the redraw count alongside the
// result.
func runTrial(gen *Generator, p domain.Params) (domain.TrialResult, int, error) {
	for attempt := 0; ; attempt++ {
		ds, err := gen.Generate(p.Units, p.Mode)
		if err != nil {
			return domain.TrialResult{}, attempt, err
		}
		r, err := Analyze(ds)
		if err == nil {
			return r, attempt, nil
		}
		var degen *domain.DegenerateRegressionError
		if !errors.As(err, &degen) {
			return domain.TrialResult{}, attempt, err
		}
		if attempt == maxRetriesPerTrial {
			return domain.TrialResult{}, attempt, fmt.Errorf("retry budget exhausted: %w", err)
		}
	}
}
