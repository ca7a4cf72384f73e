package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mailpane/mailpane/internal/config"
	"github.com/mailpane/mailpane/internal/logging"
)

// Auto-refresh scheduling constants.
const (
	// refreshLead is how long before expiry the one-shot refresh fires.
	refreshLead = 10 * time.Minute
	// minRefreshDelay is the soonest a scheduled refresh may fire.
	minRefreshDelay = time.Minute
	// refreshCheckInterval is the recurring background check period.
	refreshCheckInterval = 30 * time.Minute
)

// State is the session manager lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateSignedOut
	StateSignedIn
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateSignedOut:
		return "signed_out"
	case StateSignedIn:
		return "signed_in"
	default:
		return "unknown"
	}
}

// Manager owns the OAuth2 access token lifecycle: acquisition,
// persistence, expiry checking, silent refresh, and revocation. It is an
// explicit object with a create/teardown lifecycle; construct one with
// NewManager and release it with Close.
type Manager struct {
	cfg      config.Config
	store    Store
	issuer   TokenIssuer
	verifier Verifier
	ready    ReadyFunc
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	state   State
	session *Session

	refreshStop chan struct{}
	refreshWG   sync.WaitGroup
}

// Option customizes a Manager; used to substitute fakes in tests.
type Option func(*Manager)

// WithStore substitutes the session persistence backend.
func WithStore(s Store) Option { return func(m *Manager) { m.store = s } }

// WithIssuer substitutes the token issuer.
func WithIssuer(i TokenIssuer) Option { return func(m *Manager) { m.issuer = i } }

// WithVerifier substitutes the post-issuance verifier.
func WithVerifier(v Verifier) Option { return func(m *Manager) { m.verifier = v } }

// WithReadiness substitutes the provider readiness probe.
func WithReadiness(r ReadyFunc) Option { return func(m *Manager) { m.ready = r } }

// WithLogger substitutes the logger.
func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.logger = l } }

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager creates a session manager for the given configuration.
func NewManager(cfg config.Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		store:    NewFileStore(cfg.CacheDir),
		issuer:   NewGoogleIssuer(cfg),
		verifier: ProfileVerifier{},
		ready:    HTTPReadiness(&http.Client{Timeout: 5 * time.Second}, google.Endpoint.AuthURL),
		logger:   slog.Default(),
		now:      time.Now,
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.WithComponent(m.logger, "session")
	return m
}

// Initialize validates configuration, waits for the identity provider to
// become reachable, and adopts any persisted unexpired session.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	m.state = StateInitializing
	m.mu.Unlock()

	if err := m.cfg.Validate(); err != nil {
		m.setState(StateUninitialized)
		return err
	}

	if err := WaitForReady(ctx, m.ready, m.cfg.ReadinessTimeout, m.cfg.ReadinessInterval); err != nil {
		m.setState(StateUninitialized)
		return err
	}

	sess, err := m.store.Load()
	if err != nil {
		// Storage being unavailable is treated as having no session.
		m.logger.Warn("failed to load persisted session", logging.Err(err))
		sess = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = sess
	if sess.Valid(m.now()) {
		m.state = StateSignedIn
		m.logger.Info("restored persisted session",
			slog.Time("expires_at", sess.ExpiresAt))
	} else {
		// A stale session is kept around for its refresh token.
		m.state = StateSignedOut
	}
	return nil
}

// SignIn establishes a session. Idempotent: a valid, non-expiring-soon
// session resolves immediately without a new prompt. Otherwise the token
// is requested silently when a refresh path exists, interactively on
// first use, and verified with a live probe before being persisted.
func (m *Manager) SignIn(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.state == StateUninitialized || m.state == StateInitializing {
		m.mu.Unlock()
		return nil, ErrNotInitialized
	}
	if m.session.Valid(m.now()) {
		sess := m.session.clone()
		m.mu.Unlock()
		return sess, nil
	}
	stale := m.session.clone()
	m.mu.Unlock()

	var (
		sess *Session
		err  error
	)
	if stale.Refreshable() {
		sess, err = m.issuer.Silent(ctx, stale.RefreshToken)
	} else {
		sess, err = m.issuer.Interactive(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := m.verifier.Verify(ctx, sess); err != nil {
		// The token never becomes the active session and is not persisted.
		m.setState(StateSignedOut)
		return nil, &VerificationError{Err: err}
	}

	m.adopt(sess)
	m.logger.Info("sign-in successful",
		slog.Time("expires_at", sess.ExpiresAt),
		slog.String("token", logging.SanitizeToken(sess.AccessToken)))
	return sess.clone(), nil
}

// Refresh silently replaces the current token, keeping the signed-in
// state unchanged. Used by the auto-refresh loop and by the one
// authorization-triggered retry in the mail gateway.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	cur := m.session.clone()
	m.mu.Unlock()

	if !cur.Refreshable() {
		return ErrNotSignedIn
	}
	sess, err := m.issuer.Silent(ctx, cur.RefreshToken)
	if err != nil {
		return err
	}
	m.adopt(sess)
	m.logger.Debug("session refreshed", slog.Time("expires_at", sess.ExpiresAt))
	return nil
}

// IsSignedIn reports whether a token is present and outside the expiry
// buffer. Pure predicate; no side effects.
func (m *Manager) IsSignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateSignedIn && m.session.Valid(m.now())
}

// Current returns a copy of the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.clone()
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SignOut revokes the token with the provider on a best-effort basis,
// then unconditionally clears local state, even if revocation fails.
func (m *Manager) SignOut(ctx context.Context) error {
	m.StopAutoRefresh()

	m.mu.Lock()
	cur := m.session.clone()
	m.mu.Unlock()

	if cur != nil && cur.AccessToken != "" {
		if err := m.issuer.Revoke(ctx, cur.AccessToken); err != nil {
			m.logger.Warn("token revocation failed, clearing local state anyway",
				logging.Err(err))
		}
	}

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear persisted session", logging.Err(err))
	}

	m.mu.Lock()
	m.session = nil
	m.state = StateSignedOut
	m.mu.Unlock()

	m.logger.Info("signed out")
	return nil
}

// StartAutoRefresh keeps the token window covered without user
// interaction: a one-shot refresh fires refreshLead before expiry (at
// least minRefreshDelay from now), and a recurring check runs every
// refreshCheckInterval.
func (m *Manager) StartAutoRefresh(ctx context.Context) {
	m.mu.Lock()
	if m.refreshStop != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	m.refreshStop = stop
	expiry := time.Time{}
	if m.session != nil {
		expiry = m.session.ExpiresAt
	}
	m.mu.Unlock()

	delay := RefreshDelay(expiry, m.now())

	m.refreshWG.Add(1)
	go func() {
		defer m.refreshWG.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		ticker := time.NewTicker(refreshCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-timer.C:
			case <-ticker.C:
			}
			if !m.IsSignedIn() {
				continue
			}
			if err := m.Refresh(ctx); err != nil {
				m.logger.Warn("background refresh failed", logging.Err(err))
			}
		}
	}()
}

// StopAutoRefresh cancels the background refresh loop.
func (m *Manager) StopAutoRefresh() {
	m.mu.Lock()
	stop := m.refreshStop
	m.refreshStop = nil
	m.mu.Unlock()
	if stop != nil {
		close(stop)
		m.refreshWG.Wait()
	}
}

// Close tears the manager down. It does not sign the user out.
func (m *Manager) Close() error {
	m.StopAutoRefresh()
	return nil
}

// RefreshDelay computes when the one-shot refresh should fire for a
// session expiring at the given time: refreshLead before expiry, but
// never sooner than minRefreshDelay from now.
func RefreshDelay(expiry, now time.Time) time.Duration {
	if expiry.IsZero() {
		return minRefreshDelay
	}
	delay := expiry.Sub(now) - refreshLead
	if delay < minRefreshDelay {
		return minRefreshDelay
	}
	return delay
}

// HTTPClient returns an HTTP client that injects the manager's current
// bearer token into every request. The gateway builds its Gmail service
// on top of it so silent refreshes are picked up transparently.
func (m *Manager) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, managerTokenSource{m: m})
}

// managerTokenSource adapts the manager to oauth2.TokenSource.
type managerTokenSource struct {
	m *Manager
}

func (ts managerTokenSource) Token() (*oauth2.Token, error) {
	sess := ts.m.Current()
	if sess == nil || sess.AccessToken == "" {
		return nil, ErrNotSignedIn
	}
	return &oauth2.Token{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		Expiry:      sess.ExpiresAt,
	}, nil
}

// adopt installs a verified session, persisting it best-effort.
func (m *Manager) adopt(sess *Session) {
	if err := m.store.Save(sess); err != nil {
		m.logger.Warn("failed to persist session", logging.Err(err))
	}
	m.mu.Lock()
	m.session = sess
	m.state = StateSignedIn
	m.mu.Unlock()
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
