// Package api provides the HTTP transport used by every vaultkit operation.
// It handles authentication headers, request serialization, and the
// classification of failed round trips.
//
// # Request Flow
//
// [Client.Do] performs one HTTP round trip:
//
//  1. The body, if any, is encoded as JSON.
//  2. The token is sent in the X-Vault-Token header, the namespace (if set)
//     in X-Vault-Namespace.
//  3. Any status outside 2xx is turned into an [apierrors.APIError] carrying
//     the status code and the server's "errors" list. This happens before
//     the body is handed back to a decoder.
//  4. Connection, TLS, timeout and cancellation failures become an
//     [apierrors.TransportError] wrapping the cause.
//
// Requests are never retried here. Callers that want backoff wrap operations
// with the retry package.
//
// # Thread Safety
//
// The [Client] type is immutable after construction and safe for concurrent
// use. [Client.WithToken] returns a copy rather than mutating the receiver.
package api
