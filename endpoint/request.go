package endpoint

import (
	"fmt"
	"net/url"
)

// Shape is the payload a request's response is expected to carry.
type Shape int

const (
	// ShapeEmpty responses carry no payload worth decoding (writes, deletes).
	ShapeEmpty Shape = iota
	// ShapeData responses carry {"data": {...}} and are decoded in Result mode.
	ShapeData
	// ShapeAuth responses carry {"auth": {...}} and are decoded in Auth mode.
	ShapeAuth
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeData:
		return "data"
	case ShapeAuth:
		return "auth"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Request describes one API call. It is produced by a builder's Build method
// and cannot be changed afterwards.
type Request struct {
	name   string
	method string
	path   string
	query  url.Values
	body   any
	shape  Shape
}

// RequestOption sets an optional part of a Request at construction.
type RequestOption func(*Request)

// WithBody sets the value encoded as the JSON request body.
func WithBody(body any) RequestOption {
	return func(r *Request) {
		r.body = body
	}
}

// WithQuery sets the query parameters. The values are copied.
func WithQuery(query url.Values) RequestOption {
	return func(r *Request) {
		if len(query) > 0 {
			r.query = cloneValues(query)
		}
	}
}

// NewRequest creates a descriptor. name identifies the request type in
// errors ("token lookup"); path is relative to /v1/ and already rendered.
func NewRequest(name, method, path string, shape Shape, opts ...RequestOption) *Request {
	r := &Request{
		name:   name,
		method: method,
		path:   path,
		shape:  shape,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the request type name.
func (r *Request) Name() string { return r.name }

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// Path returns the rendered path relative to /v1/.
func (r *Request) Path() string { return r.path }

// Shape returns the expected response payload.
func (r *Request) Shape() Shape { return r.shape }

// Body returns the request body, or nil.
func (r *Request) Body() any { return r.body }

// Query returns a copy of the query parameters, or nil.
func (r *Request) Query() url.Values {
	if r.query == nil {
		return nil
	}
	return cloneValues(r.query)
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s (%s)", r.method, r.path, r.shape)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
