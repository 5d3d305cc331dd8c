// Package httputil provides HTTP client utilities.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures.
// Only errors wrapped with [RetryableError] are retried - callers decide
// what counts as transient (network errors, 5xx responses):
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if resp.StatusCode >= 500 {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
//	    }
//	    return handle(resp)
//	})
//
// Backoff is exponential starting at the given delay, and the loop stops
// early when the context is cancelled.
package httputil
