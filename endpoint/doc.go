// Package endpoint holds the request/response layer shared by every
// operation package.
//
// An operation (see the token, kv1 and sys packages) fills a builder,
// calls its Build method to obtain an immutable [Request], and hands the
// request to one of the executors:
//
//   - [Exec] for requests whose response carries nothing to decode.
//   - [ExecWithResult] and [ExecWithResponse] for {"data": ...} responses.
//   - [Auth] for {"auth": ...} responses, decoded into [AuthInfo].
//
// Executing a request with the wrong decode mode fails with a
// ValidationError before any I/O. A malformed success payload fails with a
// TransportError whose Op is "decode". Non-2xx responses are APIErrors and
// are never decoded as success payloads.
package endpoint
