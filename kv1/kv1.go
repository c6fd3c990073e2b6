// Package kv1 reads and writes secrets in a version 1 key/value engine.
//
// Paths below a mount behave like directories: writing mysecret/foo makes
// foo appear in List(ctx, c, mount, "mysecret").
package kv1

import (
	"context"

	"github.com/vaultkit/client-go/endpoint"
)

// Set stores data at path, replacing any previous value.
func Set(ctx context.Context, c endpoint.Client, mount, path string, data any) error {
	req, err := NewSetSecretRequest().Mount(mount).Path(path).Data(data).Build()
	if err != nil {
		return err
	}
	return endpoint.Exec(ctx, c, req)
}

// Get reads the secret at path and decodes its data into T, typically
// map[string]string or a struct.
func Get[T any](ctx context.Context, c endpoint.Client, mount, path string) (T, error) {
	req, err := NewGetSecretRequest().Mount(mount).Path(path).Build()
	if err != nil {
		var zero T
		return zero, err
	}
	return endpoint.ExecWithResult[T](ctx, c, req)
}

// GetRaw reads the secret at path and returns the whole response envelope.
func GetRaw(ctx context.Context, c endpoint.Client, mount, path string) (*GetSecretResponse, error) {
	req, err := NewGetSecretRequest().Mount(mount).Path(path).Build()
	if err != nil {
		return nil, err
	}
	return endpoint.ExecWithResponse[map[string]any](ctx, c, req)
}

// List returns the keys directly below path, in server order. Keys that are
// themselves directories end in "/".
func List(ctx context.Context, c endpoint.Client, mount, path string) ([]string, error) {
	req, err := NewListSecretRequest().Mount(mount).Path(path).Build()
	if err != nil {
		return nil, err
	}
	resp, err := endpoint.ExecWithResult[ListSecretResponse](ctx, c, req)
	if err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

// Delete removes the secret at path. Reading it afterwards fails with an
// APIError whose StatusCode is 404.
func Delete(ctx context.Context, c endpoint.Client, mount, path string) error {
	req, err := NewDeleteSecretRequest().Mount(mount).Path(path).Build()
	if err != nil {
		return err
	}
	return endpoint.Exec(ctx, c, req)
}
