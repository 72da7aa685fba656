package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"covarsim/internal/adapters/turso"
	"covarsim/internal/database"
	"covarsim/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Render artifacts for a stored run",
	Long: `Load a persisted study run and print its summary. With --out or --html,
re-render the scatter plot or the HTML report from the stored trial results.

Examples:
  covarsim report 4f6c...                  # summary only
  covarsim report 4f6c... --out study.svg
  covarsim report 4f6c... --html study.html`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

// Flags
var (
	reportOut  string
	reportHTML string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write the scatter plot to this path (.png, .svg, .pdf)")
	reportCmd.Flags().StringVar(&reportHTML, "html", "", "Write the HTML study report to this path")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	runID := args[0]

	repo, cleanup, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := repo.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %q not found", runID)
	}

	results, err := repo.GetTrials(ctx, runID)
	if err != nil {
		return err
	}
	// Stored aggregate rows omit spread; recompute the full summary from
	// the trial results.
	run.Summary = results.Summarize()

	printSummary(os.Stdout, run)

	if reportOut != "" {
		if err := report.RenderScatter(results, reportOut); err != nil {
			return fmt.Errorf("render plot: %w", err)
		}
		logger.Info("wrote plot", "path", reportOut)
	}
	if reportHTML != "" {
		svg, err := report.ScatterSVG(results)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		if err := report.WriteHTML(ctx, reportHTML, report.StudyReport(run, results, svg)); err != nil {
			return err
		}
		logger.Info("wrote report", "path", reportHTML)
	}
	return nil
}

// openRepository connects to the configured database and guarantees the
// schema exists.
func openRepository(ctx context.Context) (*turso.RunRepository, func(), error) {
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("no database configured: set database.url or COVARSIM_DATABASE_URL")
	}

	db, err := database.New(cfg.Database.URL, cfg.Database.AuthToken)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := turso.NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repo, func() { _ = db.Close() }, nil
}
