package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"covarsim/internal/ports"
)

const (
	serviceName    = "covarsim"
	serviceVersion = "1.0.0"
)

// Exporter exports study-run metrics to an OTEL Collector.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	meter        metric.Meter
	trialsTotal  metric.Int64Counter
	retriesTotal metric.Int64Counter
	runsTotal    metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	trialsTotal, err := meter.Int64Counter(
		"covarsim_trials_total",
		metric.WithDescription("Total simulated trials"),
		metric.WithUnit("{trial}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trials counter: %w", err)
	}

	retriesTotal, err := meter.Int64Counter(
		"covarsim_degenerate_retries_total",
		metric.WithDescription("Degenerate trials redrawn during runs"),
		metric.WithUnit("{trial}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retries counter: %w", err)
	}

	runsTotal, err := meter.Int64Counter(
		"covarsim_runs_total",
		metric.WithDescription("Total completed study runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating runs counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"covarsim_run_duration_seconds",
		metric.WithDescription("Study run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &Exporter{
		provider:     provider,
		meter:        meter,
		trialsTotal:  trialsTotal,
		retriesTotal: retriesTotal,
		runsTotal:    runsTotal,
		durationHist: durationHist,
	}, nil
}

// ExportRunMetrics records the counters of one completed run.
func (e *Exporter) ExportRunMetrics(ctx context.Context, m *ports.RunMetrics) error {
	attrs := metric.WithAttributes(
		attribute.String("run_id", m.RunID),
		attribute.String("mode", m.Mode),
	)

	e.trialsTotal.Add(ctx, m.Trials, attrs)
	e.retriesTotal.Add(ctx, m.Retries, attrs)
	e.runsTotal.Add(ctx, 1, attrs)
	e.durationHist.Record(ctx, m.DurationSeconds, attrs)

	return nil
}

// Close flushes pending metrics and shuts the provider down.
func (e *Exporter) Close(ctx context.Context) error {
	if err := e.provider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("flushing metrics: %w", err)
	}
	return e.provider.Shutdown(ctx)
}
