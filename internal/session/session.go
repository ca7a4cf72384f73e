package session

import (
	"time"
)

// ExpiryBuffer is the trailing window before token expiry during which a
// session is already treated as expired. Refreshing inside the buffer
// avoids racing the provider's own expiry check mid-operation.
const ExpiryBuffer = 5 * time.Minute

// Session is the authenticated context authorizing calls to the mail
// provider: a bearer token plus its expiry and granted scopes.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// Valid reports whether the session is usable at the given instant.
// A session within ExpiryBuffer of its expiry counts as expired.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.AccessToken == "" || s.ExpiresAt.IsZero() {
		return false
	}
	return now.Before(s.ExpiresAt.Add(-ExpiryBuffer))
}

// Refreshable reports whether the session carries a refresh path.
func (s *Session) Refreshable() bool {
	return s != nil && s.RefreshToken != ""
}

// clone returns a copy so callers cannot mutate manager-owned state.
func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Scopes = append([]string(nil), s.Scopes...)
	return &out
}
