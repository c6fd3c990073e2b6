package vaultkit

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pkcs12"
)

// TLSConfig describes how the client verifies the server and, optionally,
// authenticates itself with a certificate.
type TLSConfig struct {
	// CACert is a PEM file of CA certificates to trust.
	CACert string `yaml:"ca_cert"`
	// CAPath is a directory of PEM files to trust.
	CAPath string `yaml:"ca_path"`

	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`

	// PKCS12File holds a client certificate and key as one bundle.
	PKCS12File     string `yaml:"pkcs12_file"`
	PKCS12Password string `yaml:"pkcs12_password"`

	ServerName string `yaml:"server_name"`
	Insecure   bool   `yaml:"insecure"`
}

func (t *TLSConfig) build() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         t.ServerName,
		InsecureSkipVerify: t.Insecure, //nolint:gosec // opt-in for development servers
	}

	if t.CACert != "" || t.CAPath != "" {
		pool, err := t.certPool()
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	switch {
	case t.PKCS12File != "":
		cert, err := loadPKCS12(t.PKCS12File, t.PKCS12Password)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	case t.ClientCert != "" || t.ClientKey != "":
		if t.ClientCert == "" || t.ClientKey == "" {
			return nil, errors.New("client certificate and key must be set together")
		}
		cert, err := tls.LoadX509KeyPair(t.ClientCert, t.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func (t *TLSConfig) certPool() (*x509.CertPool, error) {
	pool := x509.NewCertPool()

	if t.CACert != "" {
		if err := appendPEMFile(pool, t.CACert); err != nil {
			return nil, err
		}
	}

	if t.CAPath != "" {
		entries, err := os.ReadDir(t.CAPath)
		if err != nil {
			return nil, fmt.Errorf("read CA directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if err := appendPEMFile(pool, filepath.Join(t.CAPath, entry.Name())); err != nil {
				return nil, err
			}
		}
	}

	return pool, nil
}

func appendPEMFile(pool *x509.CertPool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read CA certificate: %w", err)
	}
	if !pool.AppendCertsFromPEM(data) {
		return fmt.Errorf("no PEM certificates found in %s", path)
	}
	return nil
}

func loadPKCS12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read PKCS#12 bundle: %w", err)
	}

	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode PKCS#12 bundle: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}, nil
}
