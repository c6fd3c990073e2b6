package vaultkit

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultAddress = "https://127.0.0.1:8200"
	defaultTimeout = 60 * time.Second
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	address    string
	token      string
	namespace  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zerolog.Logger
	tls        TLSConfig
}

// Option configures the client.
type Option func(*clientConfig)

// WithAddress sets the server address, e.g. https://vault.example.com:8200.
func WithAddress(address string) Option {
	return func(c *clientConfig) {
		c.address = address
	}
}

// WithToken sets the token sent with every request.
func WithToken(token string) Option {
	return func(c *clientConfig) {
		c.token = token
	}
}

// WithNamespace sets the namespace header sent with every request.
func WithNamespace(namespace string) Option {
	return func(c *clientConfig) {
		c.namespace = namespace
	}
}

// WithTimeout sets the per-request timeout.
// Default: 60 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client. TLS and timeout options are
// ignored when a custom client is supplied.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithLogger sets the logger used for per-request debug output.
// Default: a disabled logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = &logger
	}
}

// WithTLSConfig replaces the whole TLS configuration.
func WithTLSConfig(cfg TLSConfig) Option {
	return func(c *clientConfig) {
		c.tls = cfg
	}
}

// WithCACert trusts the PEM-encoded CA certificates in path.
func WithCACert(path string) Option {
	return func(c *clientConfig) {
		c.tls.CACert = path
	}
}

// WithClientCert presents the PEM certificate and key for mutual TLS.
func WithClientCert(certFile, keyFile string) Option {
	return func(c *clientConfig) {
		c.tls.ClientCert = certFile
		c.tls.ClientKey = keyFile
	}
}

// WithClientPKCS12 presents the certificate and key from a PKCS#12 bundle.
func WithClientPKCS12(path, password string) Option {
	return func(c *clientConfig) {
		c.tls.PKCS12File = path
		c.tls.PKCS12Password = password
	}
}

// WithInsecureSkipVerify disables server certificate verification.
// Only use this against local development servers.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *clientConfig) {
		c.tls.Insecure = skip
	}
}
