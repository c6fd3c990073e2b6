package endpoint

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vaultkit/client-go/internal/apierrors"
)

// clientFunc adapts a function to the Client interface.
type clientFunc func(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error)

func (f clientFunc) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	return f(ctx, method, path, query, body)
}

func respond(body string) clientFunc {
	return func(context.Context, string, string, url.Values, any) ([]byte, error) {
		return []byte(body), nil
	}
}

func TestExecWithResult(t *testing.T) {
	var gotMethod, gotPath string
	c := clientFunc(func(_ context.Context, method, path string, _ url.Values, _ any) ([]byte, error) {
		gotMethod, gotPath = method, path
		return []byte(`{"request_id":"r1","lease_duration":2764800,"data":{"key1":"value1","key2":"value2"}}`), nil
	})

	req := NewRequest("kv1 read", http.MethodGet, "kv/mysecret/foo", ShapeData)
	got, err := ExecWithResult[map[string]string](context.Background(), c, req)
	if err != nil {
		t.Fatalf("ExecWithResult() error = %v", err)
	}

	want := map[string]string{"key1": "value1", "key2": "value2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if gotMethod != http.MethodGet || gotPath != "kv/mysecret/foo" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestExecWithResponse_KeepsLeaseMetadata(t *testing.T) {
	c := respond(`{"request_id":"r1","lease_id":"","lease_duration":2764800,"renewable":false,"data":{"key1":"value1"},"warnings":["w"]}`)

	req := NewRequest("kv1 read", http.MethodGet, "kv/foo", ShapeData)
	resp, err := ExecWithResponse[map[string]any](context.Background(), c, req)
	if err != nil {
		t.Fatalf("ExecWithResponse() error = %v", err)
	}
	if resp.RequestID != "r1" {
		t.Errorf("RequestID = %s, want r1", resp.RequestID)
	}
	if resp.LeaseDuration != 2764800 {
		t.Errorf("LeaseDuration = %d, want 2764800", resp.LeaseDuration)
	}
	if resp.Data["key1"] != "value1" {
		t.Errorf("Data[key1] = %v, want value1", resp.Data["key1"])
	}
	if diff := cmp.Diff([]string{"w"}, resp.Warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestExecWithResult_DecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no data", `{"request_id":"r1"}`},
		{"null data", `{"data":null}`},
		{"wrong data type", `{"data":{"key1":42}}`},
		{"not json", `<html>oops</html>`},
		{"empty body", ``},
		{"auth instead of data", `{"auth":{"client_token":"s.x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest("kv1 read", http.MethodGet, "kv/foo", ShapeData)
			_, err := ExecWithResult[map[string]string](context.Background(), respond(tt.body), req)

			var transportErr *apierrors.TransportError
			if !errors.As(err, &transportErr) {
				t.Fatalf("error = %v (%T), want *TransportError", err, err)
			}
			if transportErr.Op != apierrors.OpDecode {
				t.Errorf("Op = %s, want %s", transportErr.Op, apierrors.OpDecode)
			}
		})
	}
}

func TestAuth(t *testing.T) {
	c := respond(`{
		"auth": {
			"client_token": "s.child",
			"accessor": "acc-1",
			"policies": ["default", "ops"],
			"token_policies": ["default", "ops"],
			"metadata": {"user": "armon"},
			"lease_duration": 3600,
			"renewable": true,
			"entity_id": "",
			"token_type": "service",
			"orphan": false
		}
	}`)

	req := NewRequest("token create", http.MethodPost, "auth/token/create", ShapeAuth)
	info, err := Auth(context.Background(), c, req)
	if err != nil {
		t.Fatalf("Auth() error = %v", err)
	}

	want := &AuthInfo{
		ClientToken:   "s.child",
		Accessor:      "acc-1",
		Policies:      []string{"default", "ops"},
		TokenPolicies: []string{"default", "ops"},
		Metadata:      map[string]string{"user": "armon"},
		LeaseDuration: 3600,
		Renewable:     true,
		TokenType:     "service",
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("AuthInfo mismatch (-want +got):\n%s", diff)
	}
	if info.LeaseTTL().Hours() != 1 {
		t.Errorf("LeaseTTL() = %v, want 1h", info.LeaseTTL())
	}
}

func TestAuth_DecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"data instead of auth", `{"data":{"id":"s.x"}}`},
		{"null auth", `{"auth":null}`},
		{"empty token", `{"auth":{"client_token":"","renewable":true}}`},
		{"wrong field type", `{"auth":{"client_token":"s.x","lease_duration":"1h"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest("token renew", http.MethodPost, "auth/token/renew", ShapeAuth)
			_, err := Auth(context.Background(), respond(tt.body), req)

			var transportErr *apierrors.TransportError
			if !errors.As(err, &transportErr) || transportErr.Op != apierrors.OpDecode {
				t.Fatalf("error = %v, want decode TransportError", err)
			}
		})
	}
}

func TestExec_WrongModeFailsBeforeIO(t *testing.T) {
	called := false
	c := clientFunc(func(context.Context, string, string, url.Values, any) ([]byte, error) {
		called = true
		return []byte(`{}`), nil
	})

	authReq := NewRequest("token create", http.MethodPost, "auth/token/create", ShapeAuth)
	if _, err := ExecWithResult[map[string]any](context.Background(), c, authReq); !errors.Is(err, apierrors.ErrValidation) {
		t.Errorf("ExecWithResult(auth request) error = %v, want ErrValidation", err)
	}

	dataReq := NewRequest("token lookup", http.MethodPost, "auth/token/lookup", ShapeData)
	if _, err := Auth(context.Background(), c, dataReq); !errors.Is(err, apierrors.ErrValidation) {
		t.Errorf("Auth(data request) error = %v, want ErrValidation", err)
	}

	if err := Exec(context.Background(), c, nil); !errors.Is(err, apierrors.ErrValidation) {
		t.Errorf("Exec(nil) error = %v, want ErrValidation", err)
	}

	if called {
		t.Error("client was called for an invalid request")
	}
}

func TestExec_PropagatesAPIError(t *testing.T) {
	c := clientFunc(func(context.Context, string, string, url.Values, any) ([]byte, error) {
		return nil, &apierrors.APIError{StatusCode: 404}
	})

	req := NewRequest("kv1 read", http.MethodGet, "kv/foo", ShapeData)
	_, err := ExecWithResponse[map[string]any](context.Background(), c, req)

	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Errorf("error = %v, want APIError 404", err)
	}
}

func TestExec_PassesBodyAndQuery(t *testing.T) {
	var gotQuery url.Values
	var gotBody any
	c := clientFunc(func(_ context.Context, _ string, _ string, query url.Values, body any) ([]byte, error) {
		gotQuery, gotBody = query, body
		return nil, nil
	})

	body := map[string]string{"key1": "value1"}
	req := NewRequest("kv1 write", http.MethodPost, "kv/foo", ShapeEmpty,
		WithBody(body),
		WithQuery(url.Values{"list": {"true"}}),
	)
	if err := Exec(context.Background(), c, req); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if diff := cmp.Diff(body, gotBody); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if gotQuery.Get("list") != "true" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestRequest_Immutable(t *testing.T) {
	query := url.Values{"list": {"true"}}
	req := NewRequest("kv1 list", http.MethodGet, "kv/foo", ShapeData, WithQuery(query))

	query.Set("list", "false")
	got := req.Query()
	got.Set("list", "changed")

	if req.Query().Get("list") != "true" {
		t.Errorf("Query() = %v, want list=true", req.Query())
	}
	if req.String() != "GET kv/foo (data)" {
		t.Errorf("String() = %s", req.String())
	}
}
