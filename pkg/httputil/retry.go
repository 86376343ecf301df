package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff.
// Only errors wrapped in [RetryableError] are retried. The delay doubles
// after each failed attempt. Returns the last error if all attempts fail,
// or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff calls [Retry] with 3 attempts and a 1 second initial delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// StatusError turns a non-2xx response into an error. 429 yields a
// retryable [ferrors.RateLimitedError] carrying Retry-After; 5xx is
// retryable; other codes are returned as plain network errors.
func StatusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RetryableError{Err: &ferrors.RateLimitedError{RetryAfter: retryAfter}}
	case resp.StatusCode >= 500:
		return &RetryableError{Err: ferrors.New(ferrors.ErrCodeNetwork, "upstream returned %s", resp.Status)}
	}
	return ferrors.New(ferrors.ErrCodeNetwork, "upstream returned %s", resp.Status)
}

// Describe formats a request for log lines without leaking query strings,
// which may carry access tokens.
func Describe(req *http.Request) string {
	return fmt.Sprintf("%s %s%s", req.Method, req.URL.Host, req.URL.Path)
}
