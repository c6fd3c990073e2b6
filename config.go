package vaultkit

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig.
const (
	EnvAddress       = "VAULT_ADDR"
	EnvToken         = "VAULT_TOKEN"
	EnvNamespace     = "VAULT_NAMESPACE"
	EnvCACert        = "VAULT_CACERT"
	EnvCAPath        = "VAULT_CAPATH"
	EnvClientCert    = "VAULT_CLIENT_CERT"
	EnvClientKey     = "VAULT_CLIENT_KEY"
	EnvSkipVerify    = "VAULT_SKIP_VERIFY"
	EnvTLSServerName = "VAULT_TLS_SERVER_NAME"
	EnvClientTimeout = "VAULT_CLIENT_TIMEOUT"
)

// Config is the file and environment representation of client settings.
type Config struct {
	Address   string        `yaml:"address"`
	Token     string        `yaml:"token"`
	Namespace string        `yaml:"namespace"`
	Timeout   time.Duration `yaml:"timeout"`
	TLS       TLSConfig     `yaml:"tls"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Address: defaultAddress,
		Timeout: defaultTimeout,
	}
}

// LoadConfig reads the YAML file at path (skipped when path is empty) on top
// of DefaultConfig, then applies VAULT_* environment variables, which win.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from VAULT_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(EnvAddress, &c.Address)
	setString(EnvToken, &c.Token)
	setString(EnvNamespace, &c.Namespace)
	setString(EnvCACert, &c.TLS.CACert)
	setString(EnvCAPath, &c.TLS.CAPath)
	setString(EnvClientCert, &c.TLS.ClientCert)
	setString(EnvClientKey, &c.TLS.ClientKey)
	setString(EnvTLSServerName, &c.TLS.ServerName)

	if v, ok := os.LookupEnv(EnvSkipVerify); ok && v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvSkipVerify, err)
		}
		c.TLS.Insecure = skip
	}

	if v, ok := os.LookupEnv(EnvClientTimeout); ok && v != "" {
		timeout, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvClientTimeout, err)
		}
		c.Timeout = timeout
	}

	return nil
}

// parseTimeout accepts a Go duration ("30s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) options() []Option {
	opts := []Option{
		WithTLSConfig(c.TLS),
	}
	if c.Address != "" {
		opts = append(opts, WithAddress(c.Address))
	}
	if c.Token != "" {
		opts = append(opts, WithToken(c.Token))
	}
	if c.Namespace != "" {
		opts = append(opts, WithNamespace(c.Namespace))
	}
	if c.Timeout > 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	return opts
}
