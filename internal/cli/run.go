package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	oteladapter "covarsim/internal/adapters/otel"
	"covarsim/internal/domain"
	"covarsim/internal/ports"
	"covarsim/internal/report"
	"covarsim/internal/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a covariate imbalance study",
	Long: `Run a Monte Carlo study: repeatedly generate a synthetic dataset, estimate
the treatment effect with and without covariate adjustment, and summarize
the results.

Examples:
  covarsim run                                    # config defaults: 2000 trials of 20 units
  covarsim run --trials 5000 --units 50           # bigger study
  covarsim run --mode biased --bias 0.8           # covariate drives assignment
  covarsim run --out study.png --html study.html  # render artifacts
  covarsim run --save                             # persist to the configured database`,
	RunE: runStudy,
}

// Flags
var (
	runUnits   int
	runTrials  int
	runMode    string
	runSeed    uint64
	runBias    float64
	runWorkers int
	runOut     string
	runHTML    string
	runSave    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runUnits, "units", "n", 0, "Units per trial dataset")
	runCmd.Flags().IntVarP(&runTrials, "trials", "t", 0, "Number of simulated trials")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "Assignment mode: independent, biased")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "Random stream seed")
	runCmd.Flags().Float64Var(&runBias, "bias", 0, "Bias strength in [-1, 1] for biased mode")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 0, "Parallel trial workers")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Write the scatter plot to this path (.png, .svg, .pdf)")
	runCmd.Flags().StringVar(&runHTML, "html", "", "Write the HTML study report to this path")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Persist run and trial results to the database")
}

func runStudy(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p := domain.Params{
		Units:        cfg.Simulation.Units,
		Trials:       cfg.Simulation.Trials,
		Mode:         domain.AssignmentMode(cfg.Simulation.Mode),
		Seed:         cfg.Simulation.Seed,
		BiasStrength: cfg.Simulation.BiasStrength,
	}
	workers := cfg.Simulation.Workers

	flags := cmd.Flags()
	if flags.Changed("units") {
		p.Units = runUnits
	}
	if flags.Changed("trials") {
		p.Trials = runTrials
	}
	if flags.Changed("mode") {
		p.Mode = domain.AssignmentMode(runMode)
	}
	if flags.Changed("seed") {
		p.Seed = runSeed
	}
	if flags.Changed("bias") {
		p.BiasStrength = runBias
	}
	if flags.Changed("workers") {
		workers = runWorkers
	}

	if err := p.Validate(); err != nil {
		return err
	}

	logger.Info("starting study",
		"mode", p.Mode, "units", p.Units, "trials", p.Trials,
		"seed", p.Seed, "workers", workers)

	startedAt := time.Now()
	results, stats, err := sim.RunParallel(ctx, p, workers)
	if err != nil {
		return fmt.Errorf("run study: %w", err)
	}

	run := &domain.Run{
		ID:         uuid.New().String(),
		Params:     p,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Retries:    stats.Retries,
		Summary:    results.Summarize(),
	}
	logger.Debug("study finished", "duration", stats.Duration, "retries", stats.Retries)

	printSummary(os.Stdout, run)

	if runOut != "" {
		if err := report.RenderScatter(results, runOut); err != nil {
			return fmt.Errorf("render plot: %w", err)
		}
		logger.Info("wrote plot", "path", runOut)
	}
	if runHTML != "" {
		svg, err := report.ScatterSVG(results)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		if err := report.WriteHTML(ctx, runHTML, report.StudyReport(run, results, svg)); err != nil {
			return err
		}
		logger.Info("wrote report", "path", runHTML)
	}
	if runSave {
		if err := saveRun(ctx, run, results); err != nil {
			return err
		}
		logger.Info("saved run", "id", run.ID)
	}

	exportMetrics(ctx, run, stats)
	return nil
}

func saveRun(ctx context.Context, run *domain.Run, results domain.ResultCollection) error {
	repo, cleanup, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := repo.SaveRun(ctx, run, results); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// exportMetrics pushes run counters to the configured OTEL collector,
// degrading to a no-op when telemetry is off or the collector is
// unreachable. Metrics must never fail a finished study.
func exportMetrics(ctx context.Context, run *domain.Run, stats sim.RunStats) {
	ecfg := oteladapter.LoadConfig(oteladapter.Config{
		Endpoint: cfg.Telemetry.Endpoint,
		Enabled:  cfg.Telemetry.Enabled,
		Insecure: cfg.Telemetry.Insecure,
	})

	var exporter ports.MetricsExporter = oteladapter.NewNoOpExporter()
	if ecfg.Enabled {
		e, err := oteladapter.NewExporter(ctx, ecfg)
		if err != nil {
			logger.Warn("metrics exporter unavailable", "error", err)
		} else {
			exporter = e
		}
	}

	m := &ports.RunMetrics{
		RunID:           run.ID,
		Mode:            string(run.Params.Mode),
		Trials:          int64(run.Params.Trials),
		Retries:         int64(run.Retries),
		DurationSeconds: stats.Duration.Seconds(),
	}
	if err := exporter.ExportRunMetrics(ctx, m); err != nil {
		logger.Warn("failed to export metrics", "error", err)
	}
	if err := exporter.Close(ctx); err != nil {
		logger.Warn("failed to close metrics exporter", "error", err)
	}
}

func printSummary(w io.Writer, run *domain.Run) {
	s := run.Summary

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", run.ID)
	fmt.Fprintf(tw, "Mode:\t%s\n", run.Params.Mode)
	fmt.Fprintf(tw, "Units x Trials:\t%d x %d\n", run.Params.Units, run.Params.Trials)
	fmt.Fprintf(tw, "Seed:\t%d\n", run.Params.Seed)
	if run.Params.Mode == domain.ModeBiased {
		fmt.Fprintf(tw, "Bias strength:\t%g\n", run.Params.BiasStrength)
	}
	if run.Retries > 0 {
		fmt.Fprintf(tw, "Degenerate redraws:\t%d\n", run.Retries)
	}
	fmt.Fprintf(tw, "\n")
	fmt.Fprintf(tw, "Mean Cov(X, Z):\t%.4f\n", s.MeanCov)
	fmt.Fprintf(tw, "Unadjusted ATE:\t%.4f (sd %.4f, bias %+.4f)\n", s.MeanUnadjusted, s.SDUnadjusted, s.BiasUnadjusted)
	fmt.Fprintf(tw, "Adjusted ATE:\t%.4f (sd %.4f, bias %+.4f)\n", s.MeanAdjusted, s.SDAdjusted, s.BiasAdjusted)
	tw.Flush()
}
