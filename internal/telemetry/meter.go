package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// CountFunc reports the current size of a collection for a gauge.
type CountFunc func(ctx context.Context) (int64, error)

// Metrics holds the custom metrics instruments for the application.
type Metrics struct {
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram
	TasksGauge      metric.Int64ObservableGauge
	TaskListsGauge  metric.Int64ObservableGauge
}

// InitMeterProvider initializes the OpenTelemetry meter provider with an
// OTLP gRPC exporter and installs it as the global provider.
func InitMeterProvider(ctx context.Context, opts Options) (*sdkmetric.MeterProvider, error) {
	conn, err := newConn(opts.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	res, err := newResource(opts.ServiceName, opts.ServiceVersion, opts.Environment)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(10*time.Second),
		)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// NewMetrics creates and registers the request instruments and the
// tasks_total and task_lists_total gauges.
func NewMetrics(meter metric.Meter, taskCount, taskListCount CountFunc) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.RequestCounter, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	m.RequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	m.TasksGauge, err = meter.Int64ObservableGauge(
		"tasks_total",
		metric.WithDescription("Current number of tasks in the system"),
		metric.WithUnit("{task}"),
		metric.WithInt64Callback(observe(taskCount)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks gauge: %w", err)
	}

	m.TaskListsGauge, err = meter.Int64ObservableGauge(
		"task_lists_total",
		metric.WithDescription("Current number of task lists in the system"),
		metric.WithUnit("{task_list}"),
		metric.WithInt64Callback(observe(taskListCount)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task lists gauge: %w", err)
	}

	return m, nil
}

func observe(count CountFunc) metric.Int64Callback {
	return func(ctx context.Context, o metric.Int64Observer) error {
		n, err := count(ctx)
		if err != nil {
			return err
		}
		o.Observe(n)
		return nil
	}
}
