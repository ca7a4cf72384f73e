package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when an operation is attempted before
	// Initialize has completed.
	ErrNotInitialized = errors.New("session manager not initialized")

	// ErrDependencyUnavailable is returned when the identity provider never
	// became reachable within the readiness deadline. Retryable by rerunning
	// the command once connectivity is restored.
	ErrDependencyUnavailable = errors.New("identity provider unavailable")

	// ErrUserCancelled is returned when the user abandoned the interactive
	// sign-in flow. Non-fatal; the caller may re-prompt.
	ErrUserCancelled = errors.New("sign-in cancelled by user")

	// ErrAccessDenied is returned when the user declined to grant the
	// requested permissions.
	ErrAccessDenied = errors.New("access denied, required permissions were not granted")

	// ErrNotSignedIn is returned when no valid session exists.
	ErrNotSignedIn = errors.New("not signed in")
)

// VerificationError indicates a token was obtained but failed the live
// probe against the provider. The token is discarded and never persisted.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("session verification failed: %v", e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
