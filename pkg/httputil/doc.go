// Package httputil provides HTTP client helpers for the recommendation client.
//
// # Overview
//
//   - [Retry]: automatic retry with exponential backoff
//   - [Do]: send a request and report it to the observability HTTP hooks
//   - [CheckResponse]: map an HTTP status to a structured error
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// [CheckResponse] marks these statuses as retryable:
//
//   - 429 rate limit responses (honoring Retry-After)
//   - 5xx server errors
//
// Network errors returned by [Do] are retryable as well:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := httputil.Do(ctx, client, req)
//	    if err != nil {
//	        return err
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckResponse(resp)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max attempts: 3
//   - Base backoff: 1 second, doubling per attempt
package httputil
