// Package httputil provides helpers shared by the outbound HTTP clients, at
// the moment the geocoder.
//
// [Retry] re-runs an operation when it fails with a [RetryableError],
// doubling the delay between attempts:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// [StatusError] classifies a response status: 5xx and 429 are retryable,
// other non-2xx codes are not.
package httputil
