package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mailpane/mailpane/internal/config"
)

// revokeURL is Google's token revocation endpoint.
const revokeURL = "https://oauth2.googleapis.com/revoke"

// oobRedirect is the out-of-band redirect for CLI auth-code flows.
const oobRedirect = "urn:ietf:wg:oauth:2.0:oob"

// TokenIssuer issues provider tokens. Interactive escalates to a consent
// prompt; Silent uses an existing refresh path without user interaction.
type TokenIssuer interface {
	Interactive(ctx context.Context) (*Session, error)
	Silent(ctx context.Context, refreshToken string) (*Session, error)
	Revoke(ctx context.Context, accessToken string) error
}

// GoogleIssuer implements TokenIssuer against Google's OAuth2 endpoints
// using the out-of-band auth-code flow: the user opens a URL, grants
// consent, and pastes the resulting code back into the terminal.
type GoogleIssuer struct {
	conf *oauth2.Config

	// in/out drive the interactive code prompt; they default to the
	// process stdio and exist so tests can script the exchange.
	in  io.Reader
	out io.Writer

	httpClient *http.Client
}

// NewGoogleIssuer builds an issuer from the application configuration.
func NewGoogleIssuer(cfg config.Config) *GoogleIssuer {
	return &GoogleIssuer{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  oobRedirect,
			Scopes:       cfg.Scopes,
		},
		in:  os.Stdin,
		out: os.Stdout,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Interactive runs the consent flow: print the authorization URL, read the
// pasted code, exchange it for a token.
func (g *GoogleIssuer) Interactive(ctx context.Context) (*Session, error) {
	authURL := g.conf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	fmt.Fprintf(g.out, "Open the following URL in your browser and grant access:\n\n  %s\n\nPaste the authorization code here: ", authURL)

	code, err := g.readCode()
	if err != nil {
		return nil, err
	}

	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, mapOAuthError(err)
	}
	return g.toSession(tok), nil
}

// Silent re-requests a token without prompting, using the refresh token.
func (g *GoogleIssuer) Silent(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token available")
	}
	ts := g.conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		// Force a refresh rather than reusing a possibly stale access token.
		Expiry: time.Unix(1, 0),
	})
	tok, err := ts.Token()
	if err != nil {
		return nil, mapOAuthError(err)
	}
	sess := g.toSession(tok)
	if sess.RefreshToken == "" {
		// Google omits the refresh token on refresh responses; keep the one
		// we already hold.
		sess.RefreshToken = refreshToken
	}
	return sess, nil
}

// Revoke invalidates the token with the provider.
func (g *GoogleIssuer) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("revocation failed with status %s", res.Status)
	}
	return nil
}

func (g *GoogleIssuer) readCode() (string, error) {
	scanner := bufio.NewScanner(g.in)
	if !scanner.Scan() {
		// EOF before a code was entered means the user walked away.
		return "", ErrUserCancelled
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return "", ErrUserCancelled
	}
	return code, nil
}

func (g *GoogleIssuer) toSession(tok *oauth2.Token) *Session {
	expiry := tok.Expiry
	if expiry.IsZero() {
		// Access tokens default to an hour when the response omits expiry.
		expiry = time.Now().Add(time.Hour)
	}
	return &Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiry,
		Scopes:       append([]string(nil), g.conf.Scopes...),
	}
}

// mapOAuthError converts provider error codes into the distinct error
// kinds callers need to render different messaging for.
func mapOAuthError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "access_denied":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("token request failed: %w", err)
}
