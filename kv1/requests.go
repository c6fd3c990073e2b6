package kv1

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vaultkit/client-go/endpoint"
	"github.com/vaultkit/client-go/internal/apierrors"
)

const (
	secretPath = "{mount}/{path}"
	mountRoot  = "{mount}/"
)

// location names a secret: the engine mount and the path below it.
type location struct {
	Mount string `path:"mount" validate:"required"`
	Path  string `path:"path" validate:"required"`
}

// listLocation is location with an optional path. An empty path lists the
// root of the mount.
type listLocation struct {
	Mount string `path:"mount" validate:"required"`
	Path  string `path:"path"`
}

// locationBuilder holds the setters shared by every kv1 builder.
type locationBuilder[B any] struct {
	loc  location
	self B
}

// Mount sets the path the KV engine is mounted at. Required.
func (b *locationBuilder[B]) Mount(mount string) B {
	b.loc.Mount = mount
	return b.self
}

// Path sets the secret path below the mount. Required except when listing.
func (b *locationBuilder[B]) Path(path string) B {
	b.loc.Path = path
	return b.self
}

func (b *locationBuilder[B]) render(name string) (string, error) {
	loc := b.loc
	if err := endpoint.Validate(name, &loc); err != nil {
		return "", err
	}
	return endpoint.Path(name, secretPath, map[string]string{"mount": loc.Mount, "path": loc.Path})
}

// SetSecretRequestBuilder builds a POST {mount}/{path} request.
type SetSecretRequestBuilder struct {
	locationBuilder[*SetSecretRequestBuilder]
	payload struct {
		Data any `json:"data" validate:"required"`
	}
}

// NewSetSecretRequest returns an empty builder.
func NewSetSecretRequest() *SetSecretRequestBuilder {
	b := &SetSecretRequestBuilder{}
	b.self = b
	return b
}

// Data sets the key/value mapping to store. Required. Any value that
// encodes to a JSON object is accepted, such as map[string]string.
func (b *SetSecretRequestBuilder) Data(data any) *SetSecretRequestBuilder {
	b.payload.Data = data
	return b
}

// Build validates the builder and returns the request. The data is encoded
// here, so later changes to the caller's value do not reach the request.
func (b *SetSecretRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "kv1 write"
	path, err := b.render(name)
	if err != nil {
		return nil, err
	}
	if err := endpoint.Validate(name, &b.payload); err != nil {
		return nil, err
	}
	body, err := json.Marshal(b.payload.Data)
	if err != nil {
		return nil, &apierrors.ValidationError{Request: name, Fields: []string{"data"}, Message: err.Error()}
	}
	if !gjson.ParseBytes(body).IsObject() {
		return nil, &apierrors.ValidationError{Request: name, Fields: []string{"data"}, Message: "data must encode to a JSON object"}
	}
	return endpoint.NewRequest(name, http.MethodPost, path, endpoint.ShapeEmpty, endpoint.WithBody(json.RawMessage(body))), nil
}

// GetSecretRequestBuilder builds a GET {mount}/{path} request.
type GetSecretRequestBuilder struct {
	locationBuilder[*GetSecretRequestBuilder]
}

// NewGetSecretRequest returns an empty builder.
func NewGetSecretRequest() *GetSecretRequestBuilder {
	b := &GetSecretRequestBuilder{}
	b.self = b
	return b
}

// Build validates the builder and returns the request.
func (b *GetSecretRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "kv1 read"
	path, err := b.render(name)
	if err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodGet, path, endpoint.ShapeData), nil
}

// listQuery is encoded as ?list=true.
type listQuery struct {
	List bool `schema:"list"`
}

// ListSecretRequestBuilder builds a GET {mount}/{path}?list=true request.
// The path is optional; without one the request lists {mount}/.
type ListSecretRequestBuilder struct {
	locationBuilder[*ListSecretRequestBuilder]
}

// NewListSecretRequest returns an empty builder.
func NewListSecretRequest() *ListSecretRequestBuilder {
	b := &ListSecretRequestBuilder{}
	b.self = b
	return b
}

// Build validates the builder and returns the request.
func (b *ListSecretRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "kv1 list"
	loc := listLocation(b.loc)
	if err := endpoint.Validate(name, &loc); err != nil {
		return nil, err
	}
	params := map[string]string{"mount": loc.Mount, "path": loc.Path}
	template := secretPath
	if strings.Trim(loc.Path, "/") == "" {
		template = mountRoot
	}
	path, err := endpoint.Path(name, template, params)
	if err != nil {
		return nil, err
	}
	query, err := endpoint.EncodeQuery(&listQuery{List: true})
	if err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodGet, path, endpoint.ShapeData, endpoint.WithQuery(query)), nil
}

// DeleteSecretRequestBuilder builds a DELETE {mount}/{path} request.
type DeleteSecretRequestBuilder struct {
	locationBuilder[*DeleteSecretRequestBuilder]
}

// NewDeleteSecretRequest returns an empty builder.
func NewDeleteSecretRequest() *DeleteSecretRequestBuilder {
	b := &DeleteSecretRequestBuilder{}
	b.self = b
	return b
}

// Build validates the builder and returns the request.
func (b *DeleteSecretRequestBuilder) Build() (*endpoint.Request, error) {
	const name = "kv1 delete"
	path, err := b.render(name)
	if err != nil {
		return nil, err
	}
	return endpoint.NewRequest(name, http.MethodDelete, path, endpoint.ShapeEmpty), nil
}
