package metrics

import (
	"context"
	"time"

	api "go.opentelemetry.io/otel/metric"
)

type HostMetrics struct {
	startTimeGauge api.Int64ObservableGauge
	uptimeGauge    api.Int64ObservableGauge
}

// NewHostMetrics registers gauges describing the relay process itself
func NewHostMetrics(ctx context.Context, meter api.Meter, opts api.MeasurementOption) (*HostMetrics, error) {
	start := time.Now()
	startTimeGauge, err := meter.Int64ObservableGauge(
		"relayer.StartTimeSeconds",
		api.WithDescription("Start time of the relay service"),
		api.WithInt64Callback(func(ctx context.Context, result api.Int64Observer) error {
			result.Observe(start.Unix(), opts)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	uptimeGauge, err := meter.Int64ObservableGauge(
		"relayer.UptimeSeconds",
		api.WithDescription("Seconds since the relay service started"),
		api.WithInt64Callback(func(ctx context.Context, result api.Int64Observer) error {
			result.Observe(int64(time.Since(start)/time.Second), opts)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return &HostMetrics{
		startTimeGauge: startTimeGauge,
		uptimeGauge:    uptimeGauge,
	}, nil
}
