package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// Exporter types for metrics and tracing.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: mailpane).
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Enabled determines if instrumentation is active (default: false).
	// A CLI run stays quiet unless INSTRUMENTATION_ENABLED=true.
	Enabled bool

	// MetricsExporter specifies the metrics exporter type.
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus").
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type.
	// Options: "otlp", "stdout", "none" (default: "none").
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint, without protocol prefix.
	OTLPEndpoint string

	// OTLPInsecure controls whether to use unencrypted HTTP for OTLP export.
	// Only for local development; traces may contain sensitive metadata.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1).
	TraceSamplingRate float64
}

// DefaultConfig returns a Config with defaults based on environment variables.
func DefaultConfig() Config {
	return Config{
		ServiceName:       getEnvOrDefault("OTEL_SERVICE_NAME", "mailpane"),
		ServiceVersion:    "unknown",
		Enabled:           getEnvBoolOrDefault("INSTRUMENTATION_ENABLED", false),
		MetricsExporter:   getEnvOrDefault("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   getEnvOrDefault("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: getEnvFloatOrDefault("OTEL_TRACES_SAMPLER_ARG", 0.1),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetrics := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetrics[c.MetricsExporter] {
		return fmt.Errorf("unsupported metrics exporter: %s", c.MetricsExporter)
	}

	validTracing := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracing[c.TracingExporter] {
		return fmt.Errorf("unsupported tracing exporter: %s", c.TracingExporter)
	}

	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required for OTLP metrics exporter")
	}
	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required for OTLP tracing exporter")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
