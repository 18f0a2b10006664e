package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsManager owns the MeterProvider installed as the global one
type MetricsManager struct {
	meterProvider *sdkmetric.MeterProvider
	config        MetricsConfig
}

// NewMetricsManager builds the exporter and a periodic reader
// A disabled config returns a manager whose meters are no-ops
func NewMetricsManager(ctx context.Context, cfg MetricsConfig, serviceName, serviceVersion string) (*MetricsManager, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled {
		return &MetricsManager{config: cfg}, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx, serviceName, serviceVersion, cfg.ResourceAttrs)
	if err != nil {
		return nil, fmt.Errorf("create metrics resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(cfg.Interval),
			sdkmetric.WithTimeout(cfg.Timeout),
		)),
	)
	otel.SetMeterProvider(mp)

	return &MetricsManager{meterProvider: mp, config: cfg}, nil
}

func newExporter(ctx context.Context, cfg MetricsConfig) (sdkmetric.Exporter, error) {
	switch cfg.Exporter {
	case ExporterOTLP:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithTimeout(cfg.Timeout),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp metrics exporter: %w", err)
		}
		return exporter, nil

	case ExporterStdout:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("create stdout metrics exporter: %w", err)
		}
		return exporter, nil

	default:
		return nil, fmt.Errorf("unsupported metrics exporter: %s", cfg.Exporter)
	}
}

// Meter returns a named meter, a no-op one when disabled
func (m *MetricsManager) Meter(name string) metric.Meter {
	if m.meterProvider == nil {
		return noop.NewMeterProvider().Meter(name)
	}
	return m.meterProvider.Meter(name)
}

// IsEnabled metrics are being exported
func (m *MetricsManager) IsEnabled() bool {
	return m.meterProvider != nil
}

// Config effective configuration
func (m *MetricsManager) Config() MetricsConfig {
	return m.config
}

// ForceFlush exports pending data points immediately
func (m *MetricsManager) ForceFlush(ctx context.Context) error {
	if m.meterProvider == nil {
		return nil
	}
	return m.meterProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider
func (m *MetricsManager) Shutdown(ctx context.Context) error {
	if m.meterProvider == nil {
		return nil
	}
	return m.meterProvider.Shutdown(ctx)
}
