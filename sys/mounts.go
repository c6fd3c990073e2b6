// Package sys manages secrets engine mounts under sys/mounts.
package sys

import (
	"context"
	"maps"
	"net/http"
	"strings"

	"github.com/vaultkit/client-go/endpoint"
)

// MountConfig holds the tunable settings of a mount.
type MountConfig struct {
	DefaultLeaseTTL string `json:"default_lease_ttl,omitempty"`
	MaxLeaseTTL     string `json:"max_lease_ttl,omitempty"`
	ForceNoCache    bool   `json:"force_no_cache,omitempty"`
}

// EnableMountRequest is the body of POST sys/mounts/{path}.
type EnableMountRequest struct {
	Type        string            `json:"type" validate:"required"`
	Description string            `json:"description,omitempty"`
	Config      *MountConfig      `json:"config,omitempty"`
	Options     map[string]string `json:"options,omitempty"`
	Local       bool              `json:"local,omitempty"`
	SealWrap    bool              `json:"seal_wrap,omitempty"`
}

// EnableMountRequestBuilder builds a request enabling a secrets engine.
type EnableMountRequestBuilder struct {
	path    string
	payload EnableMountRequest
}

// NewEnableMountRequest returns an empty builder.
func NewEnableMountRequest() *EnableMountRequestBuilder {
	return &EnableMountRequestBuilder{}
}

// Path sets where the engine is mounted. Required.
func (b *EnableMountRequestBuilder) Path(path string) *EnableMountRequestBuilder {
	b.path = path
	return b
}

// Type sets the engine type, e.g. "kv". Required.
func (b *EnableMountRequestBuilder) Type(engine string) *EnableMountRequestBuilder {
	b.payload.Type = engine
	return b
}

// Description sets a human-readable description.
func (b *EnableMountRequestBuilder) Description(description string) *EnableMountRequestBuilder {
	b.payload.Description = description
	return b
}

// Config sets lease tuning for the mount.
func (b *EnableMountRequestBuilder) Config(cfg MountConfig) *EnableMountRequestBuilder {
	b.payload.Config = &cfg
	return b
}

// Options sets engine-specific options, e.g. {"version": "1"} for kv.
func (b *EnableMountRequestBuilder) Options(options map[string]string) *EnableMountRequestBuilder {
	b.payload.Options = maps.Clone(options)
	return b
}

// Local keeps the mount out of replication.
func (b *EnableMountRequestBuilder) Local(local bool) *EnableMountRequestBuilder {
	b.payload.Local = local
	return b
}

// SealWrap enables seal wrapping for the mount.
func (b *EnableMountRequestBuilder) SealWrap(sealWrap bool) *EnableMountRequestBuilder {
	b.payload.SealWrap = sealWrap
	return b
}

// Build validates the builder and returns the request.
func (b *EnableMountRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "sys mount enable"
	path, err := endpoint.Path(name, "sys/mounts/{path}", map[string]string{"path": b.path})
	if err != nil {
		return nil, err
	}
	body := b.payload
	body.Options = maps.Clone(b.payload.Options)
	if err := endpoint.Validate(name, &body); err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, path, endpoint.ShapeEmpty, endpoint.WithBody(&body)), nil
}

// MountInfo describes one mounted engine.
type MountInfo struct {
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Accessor    string            `json:"accessor"`
	Local       bool              `json:"local"`
	SealWrap    bool              `json:"seal_wrap"`
	Options     map[string]string `json:"options"`
	Config      struct {
		DefaultLeaseTTL int  `json:"default_lease_ttl"`
		MaxLeaseTTL     int  `json:"max_lease_ttl"`
		ForceNoCache    bool `json:"force_no_cache"`
	} `json:"config"`
}

// EnableMount mounts the engine of type engine at path. opts may be nil;
// path and engine are applied last.
func EnableMount(ctx context.Context, c endpoint.Client, path, engine string, opts *EnableMountRequestBuilder) error {
	if opts == nil {
		opts = NewEnableMountRequest()
	}
	req, err := opts.Path(path).Type(engine).Build()
	if err != nil {
		return err
	}
	return endpoint.Exec(ctx, c, req)
}

// DisableMount unmounts the engine at path, destroying its data.
func DisableMount(ctx context.Context, c endpoint.Client, path string) error {
	const name = "sys mount disable"
	p, err := endpoint.Path(name, "sys/mounts/{path}", map[string]string{"path": path})
	if err != nil {
		return err
	}
	return endpoint.Exec(ctx, c, endpoint.NewRequest(name, http.MethodDelete, p, endpoint.ShapeEmpty))
}

// ListMounts returns every mounted engine keyed by path without the
// trailing slash.
func ListMounts(ctx context.Context, c endpoint.Client) (map[string]MountInfo, error) {
	req := endpoint.NewRequest("sys mount list", http.MethodGet, "sys/mounts", endpoint.ShapeData)
	raw, err := endpoint.ExecWithResult[map[string]MountInfo](ctx, c, req)
	if err != nil {
		return nil, err
	}
	mounts := make(map[string]MountInfo, len(raw))
	for path, info := range raw {
		mounts[strings.TrimSuffix(path, "/")] = info
	}
	return mounts, nil
}
