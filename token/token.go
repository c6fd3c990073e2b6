// Package token wraps the auth/token endpoints: lookup, creation, renewal
// and revocation of tokens.
//
// Creation functions accept an optional builder for the many optional
// fields. Pass nil for server defaults:
//
//	auth, err := token.New(ctx, client, token.NewCreateRequest().
//		Policies("ops").
//		TTL("1h"))
package token

import (
	"context"

	"github.com/vaultkit/client-go/endpoint"
)

// Lookup returns information about token.
func Lookup(ctx context.Context, c endpoint.Client, token string) (*LookupResponse, error) {
	req, err := NewLookupRequest().Token(token).Build()
	if err != nil {
		return nil, err
	}
	return endpoint.ExecWithResult[*LookupResponse](ctx, c, req)
}

// LookupAccessor returns information about the token identified by accessor.
// The token ID is not included in the response.
func LookupAccessor(ctx context.Context, c endpoint.Client, accessor string) (*LookupResponse, error) {
	req, err := NewLookupAccessorRequest().Accessor(accessor).Build()
	if err != nil {
		return nil, err
	}
	return endpoint.ExecWithResult[*LookupResponse](ctx, c, req)
}

// LookupSelf returns information about the token the client sends.
func LookupSelf(ctx context.Context, c endpoint.Client) (*LookupResponse, error) {
	req, err := NewLookupSelfRequest().Build()
	if err != nil {
		return nil, err
	}
	return endpoint.ExecWithResult[*LookupResponse](ctx, c, req)
}

// New creates a child of the client's token. opts may be nil.
func New(ctx context.Context, c endpoint.Client, opts *CreateRequestBuilder) (*endpoint.AuthInfo, error) {
	if opts == nil {
		opts = NewCreateRequest()
	}
	req, err := opts.Build()
	if err != nil {
		return nil, err
	}
	return endpoint.Auth(ctx, c, req)
}

// NewOrphan creates a token without a parent. opts may be nil.
func NewOrphan(ctx context.Context, c endpoint.Client, opts *CreateOrphanRequestBuilder) (*endpoint.AuthInfo, error) {
	if opts == nil {
		opts = NewCreateOrphanRequest()
	}
	req, err := opts.Build()
	if err != nil {
		return nil, err
	}
	return endpoint.Auth(ctx, c, req)
}

// NewRole creates a token using the settings of role. opts may be nil; the
// role is set on it last, replacing any role the caller configured.
func NewRole(ctx context.Context, c endpoint.Client, role string, opts *CreateRoleRequestBuilder) (*endpoint.AuthInfo, error) {
	if opts == nil {
		opts = NewCreateRoleRequest()
	}
	req, err := opts.RoleName(role).Build()
	if err != nil {
		return nil, err
	}
	return endpoint.Auth(ctx, c, req)
}

// Renew extends the lease of token. An empty increment lets the server apply
// its default and is not sent.
func Renew(ctx context.Context, c endpoint.Client, token, increment string) (*endpoint.AuthInfo, error) {
	b := NewRenewRequest()
	if increment != "" {
		b.Increment(increment)
	}
	req, err := b.Token(token).Build()
	if err != nil {
		return nil, err
	}
	return endpoint.Auth(ctx, c, req)
}

// RenewAccessor extends the lease of the token identified by accessor.
func RenewAccessor(ctx context.Context, c endpoint.Client, accessor, increment string) (*endpoint.AuthInfo, error) {
	b := NewRenewAccessorRequest()
	if increment != "" {
		b.Increment(increment)
	}
	req, err := b.Accessor(accessor).Build()
	if err != nil {
		return nil, err
	}
	return endpoint.Auth(ctx, c, req)
}

// RenewSelf extends the lease of the token the client sends.
func RenewSelf(ctx context.Context, c endpoint.Client, increment string) (*endpoint.AuthInfo, error) {
	b := NewRenewSelfRequest()
	if increment != "" {
		b.Increment(increment)
	}
	req, err := b.Build()
	if err != nil {
		return nil, err
	}
	return endpoint.Auth(ctx, c, req)
}

// Revoke revokes token and all of its children.
func Revoke(ctx context.Context, c endpoint.Client, token string) error {
	req, err := NewRevokeRequest().Token(token).Build()
	if err != nil {
		return err
	}
	return endpoint.Exec(ctx, c, req)
}

// RevokeOrphan revokes token but keeps its children, which become orphans.
func RevokeOrphan(ctx context.Context, c endpoint.Client, token string) error {
	req, err := NewRevokeRequest().Token(token).Orphan(true).Build()
	if err != nil {
		return err
	}
	return endpoint.Exec(ctx, c, req)
}

// RevokeAccessor revokes the token identified by accessor.
func RevokeAccessor(ctx context.Context, c endpoint.Client, accessor string) error {
	req, err := NewRevokeAccessorRequest().Accessor(accessor).Build()
	if err != nil {
		return err
	}
	return endpoint.Exec(ctx, c, req)
}

// RevokeSelf revokes the token the client sends.
func RevokeSelf(ctx context.Context, c endpoint.Client) error {
	req, err := NewRevokeSelfRequest().Build()
	if err != nil {
		return err
	}
	return endpoint.Exec(ctx, c, req)
}
