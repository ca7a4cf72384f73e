package instrumentation

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	os.Unsetenv("OTEL_SERVICE_NAME")
	os.Unsetenv("INSTRUMENTATION_ENABLED")
	os.Unsetenv("METRICS_EXPORTER")
	os.Unsetenv("TRACING_EXPORTER")

	config := DefaultConfig()

	if config.ServiceName != "mailpane" {
		t.Errorf("expected ServiceName 'mailpane', got %q", config.ServiceName)
	}

	if config.Enabled {
		t.Error("expected Enabled to be false by default")
	}

	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected MetricsExporter 'prometheus', got %q", config.MetricsExporter)
	}

	if config.TracingExporter != ExporterNone {
		t.Errorf("expected TracingExporter 'none', got %q", config.TracingExporter)
	}

	if config.TraceSamplingRate != 0.1 {
		t.Errorf("expected TraceSamplingRate 0.1, got %f", config.TraceSamplingRate)
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	os.Setenv("OTEL_SERVICE_NAME", "test-service")
	os.Setenv("INSTRUMENTATION_ENABLED", "true")
	os.Setenv("METRICS_EXPORTER", "stdout")
	os.Setenv("TRACING_EXPORTER", "stdout")
	os.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")

	defer func() {
		os.Unsetenv("OTEL_SERVICE_NAME")
		os.Unsetenv("INSTRUMENTATION_ENABLED")
		os.Unsetenv("METRICS_EXPORTER")
		os.Unsetenv("TRACING_EXPORTER")
		os.Unsetenv("OTEL_TRACES_SAMPLER_ARG")
	}()

	config := DefaultConfig()

	if config.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %q", config.ServiceName)
	}

	if !config.Enabled {
		t.Error("expected Enabled to be true")
	}

	if config.MetricsExporter != "stdout" {
		t.Errorf("expected MetricsExporter 'stdout', got %q", config.MetricsExporter)
	}

	if config.TracingExporter != "stdout" {
		t.Errorf("expected TracingExporter 'stdout', got %q", config.TracingExporter)
	}

	if config.TraceSamplingRate != 0.5 {
		t.Errorf("expected TraceSamplingRate 0.5, got %f", config.TraceSamplingRate)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid defaults",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 0.1},
			wantErr: false,
		},
		{
			name:    "sampling rate too high",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 1.5},
			wantErr: true,
		},
		{
			name:    "sampling rate negative",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: -0.1},
			wantErr: true,
		},
		{
			name:    "unknown metrics exporter",
			config:  Config{MetricsExporter: "statsd", TracingExporter: ExporterNone, TraceSamplingRate: 0.1},
			wantErr: true,
		},
		{
			name:    "unknown tracing exporter",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: "jaeger", TraceSamplingRate: 0.1},
			wantErr: true,
		},
		{
			name:    "otlp metrics without endpoint",
			config:  Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterNone, TraceSamplingRate: 0.1},
			wantErr: true,
		},
		{
			name:    "otlp tracing with endpoint",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318", TraceSamplingRate: 0.1},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
