// Package report renders study results: a scatter plot of the estimates
// against covariate-treatment covariance, and an HTML study report.
package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"covarsim/internal/domain"
)

// Dark2 pairing: orange for the unadjusted series, teal for the adjusted.
var (
	unadjustedColor = color.RGBA{R: 217, G: 95, B: 2, A: 255}
	adjustedColor   = color.RGBA{R: 27, G: 158, B: 119, A: 255}
)

// RenderScatter writes the study scatter plot to path. Format follows the
// extension (.png, .svg, .pdf, ...).
func RenderScatter(results domain.ResultCollection, path string) error {
	p, err := buildPlot(results)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// ScatterSVG renders the plot as an SVG document for embedding in the HTML
// report.
func ScatterSVG(results domain.ResultCollection) (string, error) {
	p, err := buildPlot(results)
	if err != nil {
		return "", err
	}
	wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "svg")
	if err != nil {
		return "", fmt.Errorf("render svg: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("render svg: %w", err)
	}
	return buf.String(), nil
}

func buildPlot(results domain.ResultCollection) (*plot.Plot, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("empty result collection: %w", domain.ErrInvalidParameter)
	}

	covs := make([]float64, len(results))
	unadjusted := make(plotter.XYs, len(results))
	adjusted := make(plotter.XYs, len(results))
	for i, r := range results {
		covs[i] = r.Cov
		unadjusted[i] = plotter.XY{X: r.Cov, Y: r.UnadjustedATE}
		adjusted[i] = plotter.XY{X: r.Cov, Y: r.AdjustedATE}
	}

	p := plot.New()
	p.Title.Text = "Treatment effect estimates vs covariate imbalance"
	p.X.Label.Text = "sample Cov(X, Z)"
	p.Y.Label.Text = "estimated ATE"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	su, err := plotter.NewScatter(unadjusted)
	if err != nil {
		return nil, fmt.Errorf("unadjusted scatter: %w", err)
	}
	su.GlyphStyle.Color = unadjustedColor
	su.GlyphStyle.Shape = draw.CircleGlyph{}
	su.GlyphStyle.Radius = vg.Points(2)

	sa, err := plotter.NewScatter(adjusted)
	if err != nil {
		return nil, fmt.Errorf("adjusted scatter: %w", err)
	}
	sa.GlyphStyle.Color = adjustedColor
	sa.GlyphStyle.Shape = draw.PyramidGlyph{}
	sa.GlyphStyle.Radius = vg.Points(2)

	p.Add(su, sa)
	p.Legend.Add("unadjusted", su)
	p.Legend.Add("adjusted", sa)

	addTrendLine(p, covs, ys(results, func(r domain.TrialResult) float64 { return r.UnadjustedATE }), unadjustedColor)
	addTrendLine(p, covs, ys(results, func(r domain.TrialResult) float64 { return r.AdjustedATE }), adjustedColor)

	return p, nil
}

// addTrendLine fits ate ~ cov by least squares and draws the line across the
// covariance range. Skipped when the covariances carry no spread, since the
// slope would be undefined.
func addTrendLine(p *plot.Plot, covs, ates []float64, c color.Color) {
	lo, hi := covs[0], covs[0]
	for _, v := range covs {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return
	}

	alpha, beta := stat.LinearRegression(covs, ates, nil, false)
	line, err := plotter.NewLine(plotter.XYs{
		{X: lo, Y: alpha + beta*lo},
		{X: hi, Y: alpha + beta*hi},
	})
	if err != nil {
		return
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
}

func ys(results domain.ResultCollection, f func(domain.TrialResult) float64) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = f(r)
	}
	return out
}
