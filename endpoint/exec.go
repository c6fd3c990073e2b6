package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/vaultkit/client-go/internal/apierrors"
)

// Client performs one HTTP round trip and returns the body of a 2xx
// response. Non-2xx statuses must be reported as *apierrors.APIError.
// *vaultkit.Client implements it.
type Client interface {
	Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error)
}

// Exec executes req and discards any payload.
func Exec(ctx context.Context, c Client, req *Request) error {
	_, err := send(ctx, c, req, nil)
	return err
}

// ExecWithResponse executes a data-shaped request and decodes the whole
// envelope, lease metadata included.
func ExecWithResponse[T any](ctx context.Context, c Client, req *Request) (*Response[T], error) {
	shape := ShapeData
	body, err := send(ctx, c, req, &shape)
	if err != nil {
		return nil, err
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, decodeError(req, errors.New("response has no data payload"))
	}

	var resp Response[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, decodeError(req, err)
	}
	return &resp, nil
}

// ExecWithResult executes a data-shaped request (Result mode) and returns
// the decoded data payload.
func ExecWithResult[T any](ctx context.Context, c Client, req *Request) (T, error) {
	resp, err := ExecWithResponse[T](ctx, c, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Data, nil
}

// Auth executes an auth-shaped request (Auth mode) and returns the auth
// block. A response without one, or with an empty client_token, is a decode
// failure.
func Auth(ctx context.Context, c Client, req *Request) (*AuthInfo, error) {
	shape := ShapeAuth
	body, err := send(ctx, c, req, &shape)
	if err != nil {
		return nil, err
	}

	auth := gjson.GetBytes(body, "auth")
	if !auth.IsObject() {
		return nil, decodeError(req, errors.New("response has no auth payload"))
	}

	var info AuthInfo
	if err := json.Unmarshal([]byte(auth.Raw), &info); err != nil {
		return nil, decodeError(req, err)
	}
	if info.ClientToken == "" {
		return nil, decodeError(req, errors.New("auth payload has an empty client_token"))
	}
	return &info, nil
}

// send checks the descriptor against the decode mode, then performs the
// round trip. Status classification happens in c.Do, so a returned body is
// always a success payload.
func send(ctx context.Context, c Client, req *Request, want *Shape) ([]byte, error) {
	if req == nil {
		return nil, &apierrors.ValidationError{Message: "nil request"}
	}
	if want != nil && req.shape != *want {
		return nil, &apierrors.ValidationError{
			Request: req.name,
			Message: fmt.Sprintf("response shape is %s, cannot decode as %s", req.shape, *want),
		}
	}

	body, err := c.Do(ctx, req.method, req.path, req.query, req.body)
	if err != nil {
		return nil, err
	}

	if want != nil && !gjson.ValidBytes(body) {
		return nil, decodeError(req, fmt.Errorf("invalid JSON payload (%d bytes)", len(body)))
	}
	return body, nil
}

func decodeError(req *Request, err error) error {
	return &apierrors.TransportError{
		Op:     apierrors.OpDecode,
		Method: req.method,
		URL:    req.path,
		Err:    err,
	}
}
