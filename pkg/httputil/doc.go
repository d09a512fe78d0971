// Package httputil provides HTTP plumbing shared by the NDEx and rendering
// service clients.
//
// # Overview
//
//   - [Policy] and [Retry]: retry with exponential backoff for operations that
//     report transient failures via [RetryableError]
//   - [Do]: sends a request and reports it to the registered
//     observability HTTP hooks
//   - [ReadExcerpt]: bounded read of an error response body
//
// # Retry
//
// Only errors wrapped with [Retryable] trigger another attempt; everything
// else is returned immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// The delay doubles after each failed attempt. [Policy.MaxDelay] caps it.
package httputil
