package session

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ReadyFunc probes whether a required external dependency is reachable.
// A nil return means ready.
type ReadyFunc func(ctx context.Context) error

// WaitForReady polls probe at the given interval until it succeeds or the
// timeout elapses. The deadline is an explicit parameter rather than an
// attempt count so callers can tune it per environment.
func WaitForReady(ctx context.Context, probe ReadyFunc, timeout, interval time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = probe(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrDependencyUnavailable, ctx.Err())
		case <-deadline.C:
			return fmt.Errorf("%w after %s: %v", ErrDependencyUnavailable, timeout, lastErr)
		case <-ticker.C:
		}
	}
}

// HTTPReadiness returns a probe that checks the given URL answers at all.
// Any HTTP response counts as ready; only transport failures do not.
func HTTPReadiness(client *http.Client, url string) ReadyFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}
		res, err := client.Do(req)
		if err != nil {
			return err
		}
		res.Body.Close()
		return nil
	}
}
