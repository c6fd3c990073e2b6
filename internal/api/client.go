package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/vaultkit/client-go/internal/apierrors"
)

const (
	// DefaultTimeout is the request timeout used when none is configured.
	DefaultTimeout = 60 * time.Second

	// PathPrefix is prepended to every request path.
	PathPrefix = "/v1/"

	TokenHeader     = "X-Vault-Token"
	NamespaceHeader = "X-Vault-Namespace"
	requestHeader   = "X-Vault-Request"
)

// Config holds the settings for NewClient.
type Config struct {
	BaseURL    string
	Token      string
	Namespace  string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zerolog.Logger
}

// Client is the HTTP API client. It is immutable after construction.
type Client struct {
	baseURL    string
	token      string
	namespace  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new API client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apierrors.ErrMissingAddress
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		namespace:  cfg.Namespace,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the token sent with every request.
func (c *Client) Token() string {
	return c.token
}

// Namespace returns the namespace sent with every request, if any.
func (c *Client) Namespace() string {
	return c.namespace
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Do performs exactly one HTTP round trip. path is relative to PathPrefix.
// On a 2xx status the raw response body is returned (possibly empty). Any
// other status yields an *apierrors.APIError and the body is never treated as
// a success payload. Failures without a response yield *apierrors.TransportError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	fullPath := PathPrefix + strings.TrimPrefix(path, "/")
	target := c.baseURL + fullPath
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &apierrors.TransportError{Op: apierrors.OpEncode, Method: method, URL: target, Err: err}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, &apierrors.TransportError{Op: apierrors.OpEncode, Method: method, URL: target, Err: err}
	}

	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}
	if c.namespace != "" {
		req.Header.Set(NamespaceHeader, c.namespace)
	}
	req.Header.Set(requestHeader, "true")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", method).
			Str("path", fullPath).
			Dur("elapsed", time.Since(start)).
			Msg("request failed")
		return nil, &apierrors.TransportError{Op: apierrors.OpSend, Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierrors.TransportError{Op: apierrors.OpRead, Method: method, URL: target, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", fullPath).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorResponse(resp.StatusCode, method, fullPath, data)
	}

	return data, nil
}

// parseErrorResponse builds an APIError from an {"errors": [...]} body. Bodies
// that are not JSON (proxies, load balancers) become a single message.
func parseErrorResponse(status int, method, path string, body []byte) error {
	apiErr := &apierrors.APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return apiErr
	}

	if !gjson.ValidBytes(trimmed) {
		apiErr.Errors = []string{string(trimmed)}
		return apiErr
	}

	if list := gjson.GetBytes(trimmed, "errors"); list.IsArray() {
		for _, msg := range list.Array() {
			apiErr.Errors = append(apiErr.Errors, msg.String())
		}
	}

	return apiErr
}
