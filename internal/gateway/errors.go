package gateway

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ErrNotAuthenticated is returned when an operation is attempted without
// a valid session. The caller must sign in first.
var ErrNotAuthenticated = errors.New("not authenticated, sign in first")

// FetchError wraps a transport or provider failure on a read operation.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SendError wraps a transport or provider rejection of an outgoing message.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// isAuthError reports whether err is a 401-class provider failure that
// warrants the single session-refresh-and-retry.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 401
}
