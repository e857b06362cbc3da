// Shared plumbing for the HTTP service clients
package services

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// StatusError captures a non-2xx HTTP response after the request helpers
// have consumed the body, so callers can branch on the status code with
// [errors.As].
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the response indicates rate limiting or
// temporary unavailability rather than a permanent failure.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// sleepFn pauses between retries, honoring context cancellation.
// Package-level so tests can stub the delay out.
var sleepFn = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
