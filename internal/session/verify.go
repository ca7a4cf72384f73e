package session

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Verifier checks that a freshly issued token is actually usable by
// making one low-cost authenticated call.
type Verifier interface {
	Verify(ctx context.Context, sess *Session) error
}

// ProfileVerifier probes the Gmail profile endpoint, the cheapest
// authenticated call the mail API offers.
type ProfileVerifier struct{}

// Verify fetches the user's profile with the session's token.
func (ProfileVerifier) Verify(ctx context.Context, sess *Session) error {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: sess.AccessToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return fmt.Errorf("failed to create Gmail service: %w", err)
	}
	if _, err := svc.Users.GetProfile("me").Context(ctx).Do(); err != nil {
		return fmt.Errorf("profile probe failed: %w", err)
	}
	return nil
}
