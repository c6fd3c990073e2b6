// Package vaultkit is a client for the HTTP API of a Vault-compatible secrets
// server.
//
// The root package holds the Client: server address, token, namespace and
// TLS settings shared by every call. Operations live in sub-packages and take
// the client as an argument:
//
//   - token: lookup, create, renew and revoke tokens
//   - kv1: read, write, list and delete secrets in a KV version 1 engine
//   - sys: enable, list and disable secrets engine mounts
//   - retry: opt-in backoff for transient failures
//
// Basic usage:
//
//	client, err := vaultkit.New(
//	    vaultkit.WithAddress("https://vault.example.com:8200"),
//	    vaultkit.WithToken(os.Getenv("VAULT_TOKEN")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = kv1.Set(ctx, client, "kv_v1", "mysecret/foo", map[string]string{"key1": "value1"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	secret, err := kv1.Get[map[string]string](ctx, client, "kv_v1", "mysecret/foo")
//
// Every failure is one of three error types. A ValidationError means a
// request was incomplete and nothing was sent. A TransportError means the
// exchange itself failed (connection, TLS, timeout, cancellation or an
// undecodable body). An APIError carries the HTTP status and the server's
// messages:
//
//	var apiErr *vaultkit.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
//	    // secret does not exist
//	}
//
// Status classes can also be matched with errors.Is and the Err* sentinels.
package vaultkit
