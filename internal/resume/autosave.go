package resume

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mailpane/mailpane/internal/logging"
)

// Autosaver debounces profile saves: rapid updates collapse into a
// single write once the interval passes without further changes. Flush
// forces a pending write out immediately.
type Autosaver struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending *Profile
	timer   *time.Timer
	closed  bool
}

// NewAutosaver creates an autosaver writing through the given service.
func NewAutosaver(service *Service, interval time.Duration, logger *slog.Logger) *Autosaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Update replaces the pending profile and restarts the debounce timer.
func (a *Autosaver) Update(profile Profile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.pending = &profile
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.interval, a.flushPending)
}

func (a *Autosaver) flushPending() {
	a.mu.Lock()
	profile := a.pending
	a.pending = nil
	a.mu.Unlock()

	if profile == nil {
		return
	}
	if _, err := a.service.Save(context.Background(), *profile); err != nil {
		a.logger.Error("autosave failed",
			logging.Operation("autosave"),
			logging.Err(err))
	}
}

// Flush writes any pending profile immediately.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	profile := a.pending
	a.pending = nil
	a.mu.Unlock()

	if profile == nil {
		return nil
	}
	_, err := a.service.Save(ctx, *profile)
	return err
}

// Close flushes pending state and stops the autosaver for good.
func (a *Autosaver) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Flush(context.Background())
}
