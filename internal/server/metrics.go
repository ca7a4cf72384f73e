package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mailpane/mailpane/internal/instrumentation"
)

// DefaultMetricsAddr is the address used when none is configured.
const DefaultMetricsAddr = ":9090"

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// MetricsServerConfig holds configuration for the metrics server.
type MetricsServerConfig struct {
	// Addr is the listen address, for example ":9090".
	Addr string

	// InstrumentationProvider supplies the Prometheus registry backing
	// the /metrics endpoint.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer exposes Prometheus metrics on its own listener so
// operational data never shares a port with a user-facing surface.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
}

// NewMetricsServer creates a metrics server. It requires an enabled
// instrumentation provider; without one there is nothing to scrape.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	}
	if !config.InstrumentationProvider.Enabled() {
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	return &MetricsServer{addr: addr}, nil
}

// Start listens and serves until Shutdown or a listener error. It
// blocks; run it in a goroutine for non-blocking use.
func (s *MetricsServer) Start() error {
	mux := http.NewServeMux()

	// The OpenTelemetry prometheus exporter registers into the global
	// Prometheus registry, which promhttp.Handler() exposes.
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	slog.Info("starting metrics server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	slog.Info("shutting down metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}
