package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/a-h/templ"

	"covarsim/internal/domain"
)

// StudyReport builds the self-contained HTML report for one run: parameters,
// summary statistics, and the embedded scatter plot.
func StudyReport(run *domain.Run, results domain.ResultCollection, plotSVG string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		s := results.Summarize()

		if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<title>covarsim run %s</title>\n", templ.EscapeString(run.ID)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, reportStyle+"</head>\n<body>\n"); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "<h1>Covariate imbalance study</h1>\n<p class=\"meta\">run <code>%s</code>, finished %s</p>\n",
			templ.EscapeString(run.ID), templ.EscapeString(run.FinishedAt.Format(time.RFC3339))); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "<h2>Parameters</h2>\n<table>\n"); err != nil {
			return err
		}
		params := []struct{ k, v string }{
			{"mode", string(run.Params.Mode)},
			{"units per trial", fmt.Sprintf("%d", run.Params.Units)},
			{"trials", fmt.Sprintf("%d", run.Params.Trials)},
			{"seed", fmt.Sprintf("%d", run.Params.Seed)},
			{"bias strength", fmt.Sprintf("%g", run.Params.BiasStrength)},
			{"degenerate redraws", fmt.Sprintf("%d", run.Retries)},
		}
		for _, row := range params {
			if _, err := fmt.Fprintf(w, "<tr><th>%s</th><td>%s</td></tr>\n",
				templ.EscapeString(row.k), templ.EscapeString(row.v)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</table>\n"); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "<h2>Estimates</h2>\n<table>\n<tr><th></th><th>mean</th><th>sd</th><th>bias</th></tr>\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<tr><th>unadjusted ATE</th><td>%.4f</td><td>%.4f</td><td>%+.4f</td></tr>\n",
			s.MeanUnadjusted, s.SDUnadjusted, s.BiasUnadjusted); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<tr><th>adjusted ATE</th><td>%.4f</td><td>%.4f</td><td>%+.4f</td></tr>\n",
			s.MeanAdjusted, s.SDAdjusted, s.BiasAdjusted); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<tr><th>mean Cov(X, Z)</th><td>%.4f</td><td></td><td></td></tr>\n</table>\n", s.MeanCov); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "<h2>Scatter</h2>\n<figure>\n"); err != nil {
			return err
		}
		// The SVG comes from our own renderer, not user input.
		if err := templ.Raw(plotSVG).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n<figcaption>Each point is one trial; lines are least-squares trends of the estimate against covariance.</figcaption>\n</figure>\n"); err != nil {
			return err
		}

		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// WriteHTML renders a component to a file.
func WriteHTML(ctx context.Context, path string, c templ.Component) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := c.Render(ctx, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}

const reportStyle = `<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 64rem; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.8rem; text-align: left; }
th { background: #f5f5f5; }
figure { margin: 1rem 0; }
figcaption { color: #666; font-size: 0.9rem; }
code { background: #f5f5f5; padding: 0.1rem 0.3rem; }
.meta { color: #666; }
</style>
`
