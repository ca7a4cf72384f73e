package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provider owns the OpenTelemetry meter and tracer providers plus the
// domain metrics recorder. A disabled provider is fully functional as a
// no-op: every accessor and recorder is safe to call.
type Provider struct {
	config         Config
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *Metrics
	promExporter   *prometheus.Exporter
	enabled        bool
}

// NewProvider builds the telemetry stack from configuration and installs
// it as the global otel providers. When config.Enabled is false it
// returns a no-op provider without touching the globals.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if !config.Enabled {
		return &Provider{config: config, metrics: &Metrics{}}, nil
	}

	res, err := buildResource(ctx, config)
	if err != nil {
		return nil, err
	}

	p := &Provider{config: config, enabled: true}

	reader, promExporter, err := newMetricReader(ctx, config)
	if err != nil {
		return nil, err
	}
	p.promExporter = promExporter
	p.meterProvider = metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(reader),
	)

	p.tracerProvider, err = newTracerProvider(ctx, config, res)
	if err != nil {
		if mpErr := p.meterProvider.Shutdown(ctx); mpErr != nil {
			err = errors.Join(err, mpErr)
		}
		return nil, err
	}

	otel.SetMeterProvider(p.meterProvider)
	otel.SetTracerProvider(p.tracerProvider)

	p.metrics, err = NewMetrics(p.meterProvider.Meter(config.ServiceName))
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("create metrics recorder: %w", err)
	}
	return p, nil
}

func buildResource(ctx context.Context, config Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	}
	if hostname, err := os.Hostname(); err == nil {
		attrs = append(attrs, semconv.ServiceInstanceID(hostname))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}
	return res, nil
}

// newMetricReader selects the metrics export path. The prometheus
// exporter doubles as the reader and is returned so the provider can
// expose a scrape handler.
func newMetricReader(ctx context.Context, config Config) (metric.Reader, *prometheus.Exporter, error) {
	switch config.MetricsExporter {
	case ExporterPrometheus:
		exp, err := prometheus.New()
		if err != nil {
			return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		return exp, exp, nil

	case ExporterOTLP:
		if config.OTLPEndpoint == "" {
			return nil, nil, fmt.Errorf("OTLP metrics exporter requires OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.OTLPEndpoint)}
		if config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create OTLP metrics exporter: %w", err)
		}
		return metric.NewPeriodicReader(exp), nil, nil

	case ExporterStdout:
		slog.Warn("stdout metrics exporter enabled, for development only",
			"component", "instrumentation")
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metrics exporter: %w", err)
		}
		return metric.NewPeriodicReader(exp), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported metrics exporter: %s", config.MetricsExporter)
}

func newTracerProvider(ctx context.Context, config Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if config.TracingExporter == ExporterNone {
		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.NeverSample()),
		), nil
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch config.TracingExporter {
	case ExporterOTLP:
		if config.OTLPEndpoint == "" {
			return nil, fmt.Errorf("OTLP tracing exporter requires OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.OTLPEndpoint)}
		if config.OTLPInsecure {
			slog.Warn("OTLP insecure transport enabled, traces may contain sensitive metadata",
				"component", "instrumentation",
				"endpoint", config.OTLPEndpoint)
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create OTLP trace exporter: %w", err)
		}

	case ExporterStdout:
		slog.Warn("stdout traces exporter enabled, for development only",
			"component", "instrumentation")
		exporter, err = stdouttrace.New()
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", config.TracingExporter)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(config.TraceSamplingRate),
		)),
	), nil
}

// Enabled reports whether instrumentation is active.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// Metrics returns the metrics recorder. Never nil.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// Tracer returns a tracer for creating spans, a no-op one when
// instrumentation is disabled.
func (p *Provider) Tracer(name string) trace.Tracer {
	if !p.enabled || p.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.tracerProvider.Tracer(name)
}

// PrometheusHandler returns the metrics scrape handler, or nil when the
// Prometheus exporter is not in use.
func (p *Provider) PrometheusHandler() http.Handler {
	if p.promExporter == nil {
		return nil
	}
	return promhttp.Handler()
}

// Shutdown flushes pending telemetry and releases the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
