package token

import (
	"maps"
	"net/http"
	"slices"

	"github.com/vaultkit/client-go/endpoint"
)

const basePath = "auth/token/"

// LookupRequest is the body of POST auth/token/lookup.
type LookupRequest struct {
	Token string `json:"token" validate:"required"`
}

// LookupRequestBuilder builds a token lookup request.
type LookupRequestBuilder struct {
	payload LookupRequest
}

// NewLookupRequest returns an empty builder.
func NewLookupRequest() *LookupRequestBuilder {
	return &LookupRequestBuilder{}
}

// Token sets the token to look up. Required.
func (b *LookupRequestBuilder) Token(token string) *LookupRequestBuilder {
	b.payload.Token = token
	return b
}

// Build validates the builder and returns the request.
func (b *LookupRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "token lookup"
	body := b.payload
	if err := endpoint.Validate(name, &body); err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, basePath+"lookup", endpoint.ShapeData, endpoint.WithBody(&body)), nil
}

// LookupAccessorRequest is the body of POST auth/token/lookup-accessor.
type LookupAccessorRequest struct {
	Accessor string `json:"accessor" validate:"required"`
}

// LookupAccessorRequestBuilder builds a lookup-by-accessor request.
type LookupAccessorRequestBuilder struct {
	payload LookupAccessorRequest
}

// NewLookupAccessorRequest returns an empty builder.
func NewLookupAccessorRequest() *LookupAccessorRequestBuilder {
	return &LookupAccessorRequestBuilder{}
}

// Accessor sets the accessor to look up. Required.
func (b *LookupAccessorRequestBuilder) Accessor(accessor string) *LookupAccessorRequestBuilder {
	b.payload.Accessor = accessor
	return b
}

// Build validates the builder and returns the request.
func (b *LookupAccessorRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "token lookup-accessor"
	body := b.payload
	if err := endpoint.Validate(name, &body); err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, basePath+"lookup-accessor", endpoint.ShapeData, endpoint.WithBody(&body)), nil
}

// LookupSelfRequestBuilder builds a GET auth/token/lookup-self request.
type LookupSelfRequestBuilder struct{}

// NewLookupSelfRequest returns a builder.
func NewLookupSelfRequest() *LookupSelfRequestBuilder {
	return &LookupSelfRequestBuilder{}
}

// Build returns the request.
func (b *LookupSelfRequestBuilder) Build() (*endpoint.Request, error) {
	return endpoint.NewRequest("token lookup-self", http.MethodGet, basePath+"lookup-self", endpoint.ShapeData), nil
}

// CreateRequest is the body shared by the token creation endpoints.
type CreateRequest struct {
	ID              string            `json:"id,omitempty"`
	RoleName        string            `json:"role_name,omitempty"`
	Policies        []string          `json:"policies,omitempty"`
	Meta            map[string]string `json:"meta,omitempty"`
	NoParent        bool              `json:"no_parent,omitempty"`
	NoDefaultPolicy bool              `json:"no_default_policy,omitempty"`
	Renewable       *bool             `json:"renewable,omitempty"`
	TTL             string            `json:"ttl,omitempty"`
	Type            string            `json:"type,omitempty" validate:"omitempty,oneof=service batch default-service default-batch"`
	ExplicitMaxTTL  string            `json:"explicit_max_ttl,omitempty"`
	DisplayName     string            `json:"display_name,omitempty"`
	NumUses         int               `json:"num_uses,omitempty" validate:"gte=0"`
	Period          string            `json:"period,omitempty"`
	EntityAlias     string            `json:"entity_alias,omitempty"`
}

func (r CreateRequest) clone() CreateRequest {
	r.Policies = slices.Clone(r.Policies)
	r.Meta = maps.Clone(r.Meta)
	if r.Renewable != nil {
		renewable := *r.Renewable
		r.Renewable = &renewable
	}
	return r
}

// createBuilder holds the setters shared by the three creation builders.
// B is the concrete builder type so that chained calls keep it.
type createBuilder[B any] struct {
	payload CreateRequest
	self    B
}

// ID sets the token ID instead of letting the server generate one.
func (b *createBuilder[B]) ID(id string) B {
	b.payload.ID = id
	return b.self
}

// Policies appends policies to attach to the token.
func (b *createBuilder[B]) Policies(policies ...string) B {
	b.payload.Policies = append(b.payload.Policies, policies...)
	return b.self
}

// Meta sets the token metadata. The map is copied.
func (b *createBuilder[B]) Meta(meta map[string]string) B {
	b.payload.Meta = maps.Clone(meta)
	return b.self
}

// NoParent creates the token without a parent. Requires root or sudo.
func (b *createBuilder[B]) NoParent(noParent bool) B {
	b.payload.NoParent = noParent
	return b.self
}

// NoDefaultPolicy leaves out the default policy.
func (b *createBuilder[B]) NoDefaultPolicy(noDefault bool) B {
	b.payload.NoDefaultPolicy = noDefault
	return b.self
}

// Renewable sets whether the token can be renewed. Unset leaves the server default.
func (b *createBuilder[B]) Renewable(renewable bool) B {
	b.payload.Renewable = &renewable
	return b.self
}

// TTL sets the initial TTL, e.g. "1h".
func (b *createBuilder[B]) TTL(ttl string) B {
	b.payload.TTL = ttl
	return b.self
}

// Type sets the token type: service, batch, default-service or default-batch.
func (b *createBuilder[B]) Type(tokenType string) B {
	b.payload.Type = tokenType
	return b.self
}

// ExplicitMaxTTL sets a hard lifetime cap.
func (b *createBuilder[B]) ExplicitMaxTTL(ttl string) B {
	b.payload.ExplicitMaxTTL = ttl
	return b.self
}

// DisplayName sets the display name.
func (b *createBuilder[B]) DisplayName(name string) B {
	b.payload.DisplayName = name
	return b.self
}

// NumUses limits the number of uses. Zero means unlimited.
func (b *createBuilder[B]) NumUses(n int) B {
	b.payload.NumUses = n
	return b.self
}

// Period makes the token periodic.
func (b *createBuilder[B]) Period(period string) B {
	b.payload.Period = period
	return b.self
}

// EntityAlias ties the token to an entity alias (role-based creation only).
func (b *createBuilder[B]) EntityAlias(alias string) B {
	b.payload.EntityAlias = alias
	return b.self
}

func (b *createBuilder[B]) validated(name string) (*CreateRequest, error) {
	body := b.payload.clone()
	if err := endpoint.Validate(name, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// CreateRequestBuilder builds a POST auth/token/create request.
type CreateRequestBuilder struct {
	createBuilder[*CreateRequestBuilder]
}

// NewCreateRequest returns an empty builder.
func NewCreateRequest() *CreateRequestBuilder {
	b := &CreateRequestBuilder{}
	b.self = b
	return b
}

// RoleName applies a token role's settings to the new token.
func (b *CreateRequestBuilder) RoleName(role string) *CreateRequestBuilder {
	b.payload.RoleName = role
	return b
}

// Build validates the builder and returns the request.
func (b *CreateRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "token create"
	body, err := b.validated(name)
	if err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, basePath+"create", endpoint.ShapeAuth, endpoint.WithBody(body)), nil
}

// CreateOrphanRequestBuilder builds a POST auth/token/create-orphan request.
type CreateOrphanRequestBuilder struct {
	createBuilder[*CreateOrphanRequestBuilder]
}

// NewCreateOrphanRequest returns an empty builder.
func NewCreateOrphanRequest() *CreateOrphanRequestBuilder {
	b := &CreateOrphanRequestBuilder{}
	b.self = b
	return b
}

// Build validates the builder and returns the request.
func (b *CreateOrphanRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "token create-orphan"
	body, err := b.validated(name)
	if err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, basePath+"create-orphan", endpoint.ShapeAuth, endpoint.WithBody(body)), nil
}

// CreateRoleRequestBuilder builds a POST auth/token/create/{role_name} request.
type CreateRoleRequestBuilder struct {
	createBuilder[*CreateRoleRequestBuilder]
	roleName string
}

// NewCreateRoleRequest returns an empty builder.
func NewCreateRoleRequest() *CreateRoleRequestBuilder {
	b := &CreateRoleRequestBuilder{}
	b.self = b
	return b
}

// RoleName sets the role, which becomes part of the path. Required.
func (b *CreateRoleRequestBuilder) RoleName(role string) *CreateRoleRequestBuilder {
	b.roleName = role
	return b
}

// Build validates the builder and returns the request.
func (b *CreateRoleRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "token create-role"
	path, err := endpoint.Path(name, basePath+"create/{role_name}", map[string]string{"role_name": b.roleName})
	if err != nil {
		return nil, err
	}
	body, err := b.validated(name)
	if err != nil {
		return nil, err
	}
	body.RoleName = ""
	return endpoint.NewRequest(name, http.MethodPost, path, endpoint.ShapeAuth, endpoint.WithBody(body)), nil
}

// RenewRequest is the body of POST auth/token/renew.
type RenewRequest struct {
	Token     string `json:"token" validate:"required"`
	Increment string `json:"increment,omitempty"`
}

// RenewRequestBuilder builds a token renewal request.
type RenewRequestBuilder struct {
	payload RenewRequest
}

// NewRenewRequest returns an empty builder.
func NewRenewRequest() *RenewRequestBuilder {
	return &RenewRequestBuilder{}
}

// Token sets the token to renew. Required.
func (b *RenewRequestBuilder) Token(token string) *RenewRequestBuilder {
	b.payload.Token = token
	return b
}

// Increment requests a lease extension, e.g. "1h". Left unset, the field is
// not sent and the server applies its default.
func (b *RenewRequestBuilder) Increment(increment string) *RenewRequestBuilder {
	b.payload.Increment = increment
	return b
}

// Build validates the builder and returns the request.
func (b *RenewRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "token renew"
	body := b.payload
	if err := endpoint.Validate(name, &body); err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, basePath+"renew", endpoint.ShapeAuth, endpoint.WithBody(&body)), nil
}

// RenewAccessorRequest is the body of POST auth/token/renew-accessor.
type RenewAccessorRequest struct {
	Accessor  string `json:"accessor" validate:"required"`
	Increment string `json:"increment,omitempty"`
}

// RenewAccessorRequestBuilder builds a renew-by-accessor request.
type RenewAccessorRequestBuilder struct {
	payload RenewAccessorRequest
}

// NewRenewAccessorRequest returns an empty builder.
func NewRenewAccessorRequest() *RenewAccessorRequestBuilder {
	return &RenewAccessorRequestBuilder{}
}

// Accessor sets the accessor of the token to renew. Required.
func (b *RenewAccessorRequestBuilder) Accessor(accessor string) *RenewAccessorRequestBuilder {
	b.payload.Accessor = accessor
	return b
}

// Increment requests a lease extension.
func (b *RenewAccessorRequestBuilder) Increment(increment string) *RenewAccessorRequestBuilder {
	b.payload.Increment = increment
	return b
}

// Build validates the builder and returns the request.
func (b *RenewAccessorRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "token renew-accessor"
	body := b.payload
	if err := endpoint.Validate(name, &body); err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, basePath+"renew-accessor", endpoint.ShapeAuth, endpoint.WithBody(&body)), nil
}

// RenewSelfRequest is the body of POST auth/token/renew-self.
type RenewSelfRequest struct {
	Increment string `json:"increment,omitempty"`
}

// RenewSelfRequestBuilder builds a request renewing the calling token.
type RenewSelfRequestBuilder struct {
	payload RenewSelfRequest
}

// NewRenewSelfRequest returns an empty builder.
func NewRenewSelfRequest() *RenewSelfRequestBuilder {
	return &RenewSelfRequestBuilder{}
}

// Increment requests a lease extension.
func (b *RenewSelfRequestBuilder) Increment(increment string) *RenewSelfRequestBuilder {
	b.payload.Increment = increment
	return b
}

// Build returns the request.
func (b *RenewSelfRequestBuilder) Build() (*endpoint.Request, error) {
	body := b.payload
	return endpoint.NewRequest("token renew-self", http.MethodPost, basePath+"renew-self", endpoint.ShapeAuth, endpoint.WithBody(&body)), nil
}

// RevokeRequest is the body of POST auth/token/revoke and revoke-orphan.
type RevokeRequest struct {
	Token string `json:"token" validate:"required"`
}

// RevokeRequestBuilder builds a revocation request. With Orphan set, the
// token's children are kept and become orphans.
type RevokeRequestBuilder struct {
	payload RevokeRequest
	orphan  bool
}

// NewRevokeRequest returns an empty builder.
func NewRevokeRequest() *RevokeRequestBuilder {
	return &RevokeRequestBuilder{}
}

// Token sets the token to revoke. Required.
func (b *RevokeRequestBuilder) Token(token string) *RevokeRequestBuilder {
	b.payload.Token = token
	return b
}

// Orphan revokes only the token, orphaning its children.
func (b *RevokeRequestBuilder) Orphan(orphan bool) *RevokeRequestBuilder {
	b.orphan = orphan
	return b
}

// Build validates the builder and returns the request.
func (b *RevokeRequestBuilder) Build() (*endpoint.Request, error) {
	name, path := "token revoke", basePath+"revoke"
	if b.orphan {
		name, path = "token revoke-orphan", basePath+"revoke-orphan"
	}
	body := b.payload
	if err := endpoint.Validate(name, &body); err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, path, endpoint.ShapeEmpty, endpoint.WithBody(&body)), nil
}

// RevokeAccessorRequest is the body of POST auth/token/revoke-accessor.
type RevokeAccessorRequest struct {
	Accessor string `json:"accessor" validate:"required"`
}

// RevokeAccessorRequestBuilder builds a revoke-by-accessor request.
type RevokeAccessorRequestBuilder struct {
	payload RevokeAccessorRequest
}

// NewRevokeAccessorRequest returns an empty builder.
func NewRevokeAccessorRequest() *RevokeAccessorRequestBuilder {
	return &RevokeAccessorRequestBuilder{}
}

// Accessor sets the accessor of the token to revoke. Required.
func (b *RevokeAccessorRequestBuilder) Accessor(accessor string) *RevokeAccessorRequestBuilder {
	b.payload.Accessor = accessor
	return b
}

// Build validates the builder and returns the request.
func (b *RevokeAccessorRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "token revoke-accessor"
	body := b.payload
	if err := endpoint.Validate(name, &body); err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodPost, basePath+"revoke-accessor", endpoint.ShapeEmpty, endpoint.WithBody(&body)), nil
}

// RevokeSelfRequestBuilder builds a request revoking the calling token.
type RevokeSelfRequestBuilder struct{}

// NewRevokeSelfRequest returns a builder.
func NewRevokeSelfRequest() *RevokeSelfRequestBuilder {
	return &RevokeSelfRequestBuilder{}
}

// Build returns the request.
func (b *RevokeSelfRequestBuilder) Build() (*endpoint.Request, error) {
	return endpoint.NewRequest("token revoke-self", http.MethodPost, basePath+"revoke-self", endpoint.ShapeEmpty), nil
}
