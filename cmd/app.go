package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mailpane/mailpane/internal/assist"
	"github.com/mailpane/mailpane/internal/config"
	"github.com/mailpane/mailpane/internal/gateway"
	"github.com/mailpane/mailpane/internal/instrumentation"
	"github.com/mailpane/mailpane/internal/resume"
	"github.com/mailpane/mailpane/internal/server"
	"github.com/mailpane/mailpane/internal/session"
	"github.com/mailpane/mailpane/internal/store"
)

// metricsAddr is the optional dedicated metrics listen address,
// registered as a persistent flag on the root command.
var metricsAddr string

// app bundles the wired application services for a command invocation.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	sessions *session.Manager
	gateway  *gateway.Gateway
	store    *store.Store
	resume   *resume.Service
	history  *assist.History
	provider *instrumentation.Provider

	metricsServer *server.MetricsServer
}

// newApp loads configuration and wires the application services. The
// session manager is initialized (readiness probe plus persisted-session
// adoption) but no interactive sign-in happens here.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	instrCfg := instrumentation.DefaultConfig()
	instrCfg.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize instrumentation: %w", err)
	}

	sessions := session.NewManager(cfg, session.WithLogger(logger))
	if err := sessions.Initialize(ctx); err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	db, err := store.Open(ctx, cfg.DatabasePath())
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to prepare local store: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		gateway: gateway.New(sessions,
			gateway.WithLogger(logger),
			gateway.WithMetrics(provider.Metrics())),
		store:    db,
		resume:   resume.NewService(db),
		history:  assist.NewHistory(db),
		provider: provider,
	}

	if metricsAddr != "" && provider.Enabled() {
		srv, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.metricsServer = srv
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	return a, nil
}

// assistClient builds the generative API client, failing when no key is
// configured.
func (a *app) assistClient() (*assist.Client, error) {
	if a.cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set; AI-drafted replies are unavailable")
	}
	return assist.NewClient(a.cfg.GeminiEndpoint, a.cfg.GeminiModel, a.cfg.GeminiAPIKey,
		assist.WithLogger(a.logger),
		assist.WithMetrics(a.provider.Metrics())), nil
}

// Close releases the application services in reverse wiring order.
func (a *app) Close(ctx context.Context) {
	if a.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = a.metricsServer.Shutdown(shutdownCtx)
		cancel()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.sessions != nil {
		_ = a.sessions.Close()
	}
	if a.provider != nil {
		_ = a.provider.Shutdown(ctx)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
