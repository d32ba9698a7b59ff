// Package httputil is the shared HTTP client for remote datasets and the
// address search API.
//
// [Client] adds three things to net/http:
//
//   - Retry: 5xx responses and transport failures are retried with
//     exponential backoff via [cache.Retry]; 4xx responses fail immediately.
//   - Caching: [Client.Cached] serves a response body from a [cache.Cache]
//     and only fetches on a miss.
//   - Observability: every request is reported to the registered
//     [observability.HTTPHooks].
//
// Failures carry pkg/errors codes: NOT_FOUND for 404, NETWORK_ERROR for
// everything else, and TIMEOUT when the context deadline expires.
package httputil
