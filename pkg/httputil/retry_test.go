package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
)

func TestRetry(t *testing.T) {
	permanent := errors.New("permanent")
	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 0, nil, 3, 1, false},
		{"retries transient", 2, &RetryableError{Err: errors.New("tmp")}, 3, 3, false},
		{"gives up", 5, &RetryableError{Err: errors.New("tmp")}, 3, 3, true},
		{"no retry on permanent", 5, permanent, 3, 1, true},
		{"zero attempts means one", 5, permanent, 0, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Microsecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("tmp")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStatusError(t *testing.T) {
	resp := func(code int, hdr http.Header) *http.Response {
		if hdr == nil {
			hdr = http.Header{}
		}
		return &http.Response{StatusCode: code, Status: http.StatusText(code), Header: hdr}
	}

	if err := StatusError(resp(http.StatusOK, nil)); err != nil {
		t.Errorf("200: %v", err)
	}

	err := StatusError(resp(http.StatusTooManyRequests, http.Header{"Retry-After": {"7"}}))
	var rl *ferrors.RateLimitedError
	if !isRetryable(err) || !errors.As(err, &rl) || rl.RetryAfter != 7 {
		t.Errorf("429: %v", err)
	}

	if err := StatusError(resp(http.StatusBadGateway, nil)); !isRetryable(err) {
		t.Errorf("502 should be retryable: %v", err)
	}

	err = StatusError(resp(http.StatusUnauthorized, nil))
	if err == nil || isRetryable(err) || !ferrors.Is(err, ferrors.ErrCodeNetwork) {
		t.Errorf("401: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	u, _ := url.Parse("https://api.mapbox.com/search/geocode/v6/forward?q=x&access_token=secret")
	got := Describe(&http.Request{Method: http.MethodGet, URL: u})
	if got != "GET api.mapbox.com/search/geocode/v6/forward" {
		t.Errorf("Describe = %q", got)
	}
}
