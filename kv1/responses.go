package kv1

import "github.com/vaultkit/client-go/endpoint"

// GetSecretResponse is the full envelope of a read: the secret's data plus
// the lease metadata that Get discards.
type GetSecretResponse = endpoint.Response[map[string]any]

// ListSecretResponse is the data returned by a list request.
type ListSecretResponse struct {
	Keys []string `json:"keys"`
}
