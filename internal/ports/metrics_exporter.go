package ports

import "context"

// MetricsExporter exports study-run metrics to an external observability
// system.
type MetricsExporter interface {
	// ExportRunMetrics exports counters for one completed run.
	ExportRunMetrics(ctx context.Context, m *RunMetrics) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// RunMetrics carries the operational counters of one completed run.
type RunMetrics struct {
	RunID           string
	Mode            string
	Trials          int64
	Retries         int64
	DurationSeconds float64
}
