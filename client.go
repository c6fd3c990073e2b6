package vaultkit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vaultkit/client-go/internal/api"
)

// Client holds the server address, token and HTTP settings shared by every
// operation. It is immutable after construction and safe for concurrent use.
type Client struct {
	apiClient *api.Client
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(cfg *clientConfig) (*api.Client, error) {
	httpClient := cfg.httpClient
	if httpClient == nil {
		tlsConfig, err := cfg.tls.build()
		if err != nil {
			return nil, fmt.Errorf("configure TLS: %w", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsConfig
		httpClient = &http.Client{
			Timeout:   cfg.timeout,
			Transport: transport,
		}
	}

	return api.NewClient(api.Config{
		BaseURL:    cfg.address,
		Token:      cfg.token,
		Namespace:  cfg.namespace,
		HTTPClient: httpClient,
		Timeout:    cfg.timeout,
		Logger:     cfg.logger,
	})
}

// New creates a new client. Without WithAddress it targets
// https://127.0.0.1:8200.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		address: defaultAddress,
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	apiClient, err := buildAPIClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{apiClient: apiClient}, nil
}

// NewFromConfig creates a client from a loaded Config. Options are applied
// after the configuration, so they take precedence.
func NewFromConfig(cfg *Config, opts ...Option) (*Client, error) {
	return New(append(cfg.options(), opts...)...)
}

// NewFromEnv creates a client configured from VAULT_* environment variables.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// Address returns the server address.
func (c *Client) Address() string {
	return c.apiClient.BaseURL()
}

// Token returns the token sent with every request.
func (c *Client) Token() string {
	return c.apiClient.Token()
}

// Namespace returns the configured namespace, if any.
func (c *Client) Namespace() string {
	return c.apiClient.Namespace()
}

// WithToken returns a copy of the client that authenticates with token.
// The receiver is left untouched.
func (c *Client) WithToken(token string) *Client {
	return &Client{apiClient: c.apiClient.WithToken(token)}
}

// Do performs one raw round trip against path (relative to /v1/) and returns
// the body of a 2xx response. Most callers use the typed operations in the
// token, kv1 and sys packages instead.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	return c.apiClient.Do(ctx, method, path, query, body)
}
