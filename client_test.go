package vaultkit

import (
	"context"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Address() != defaultAddress {
		t.Errorf("Address() = %s, want %s", c.Address(), defaultAddress)
	}
	if c.Token() != "" {
		t.Errorf("Token() = %q, want empty", c.Token())
	}
}

func TestNew_InvalidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr error
	}{
		{name: "empty", address: "", wantErr: ErrMissingAddress},
		{name: "unsupported scheme", address: "ftp://vault.example.com"},
		{name: "no scheme", address: "vault.example.com:8200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithAddress(tt.address))
			if err == nil {
				t.Fatal("New() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_WithToken(t *testing.T) {
	c, err := New(WithAddress("http://127.0.0.1:8200"), WithToken("parent"), WithNamespace("ns1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	child := c.WithToken("child")
	if child.Token() != "child" {
		t.Errorf("child Token() = %s, want child", child.Token())
	}
	if c.Token() != "parent" {
		t.Errorf("parent Token() = %s, want parent", c.Token())
	}
	if child.Namespace() != "ns1" || child.Address() != c.Address() {
		t.Errorf("child lost settings: %s %s", child.Namespace(), child.Address())
	}
}

func TestClient_Do_SendsHeaders(t *testing.T) {
	var gotToken, gotNamespace, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Vault-Token")
		gotNamespace = r.Header.Get("X-Vault-Namespace")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer server.Close()

	c, err := New(WithAddress(server.URL), WithToken("s.token"), WithNamespace("team-a"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	body, err := c.Do(context.Background(), http.MethodGet, "sys/health", nil, nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(body) != `{"data":{"ok":true}}` {
		t.Errorf("body = %s", body)
	}
	if gotToken != "s.token" {
		t.Errorf("token header = %q, want s.token", gotToken)
	}
	if gotNamespace != "team-a" {
		t.Errorf("namespace header = %q, want team-a", gotNamespace)
	}
	if gotPath != "/v1/sys/health" {
		t.Errorf("path = %s, want /v1/sys/health", gotPath)
	}
}

func TestClient_TLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw})
	if err := os.WriteFile(caFile, caPEM, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "untrusted", opts: nil, wantErr: true},
		{name: "ca cert", opts: []Option{WithCACert(caFile)}},
		{name: "ca path", opts: []Option{WithTLSConfig(TLSConfig{CAPath: filepath.Dir(caFile)})}},
		{name: "insecure", opts: []Option{WithInsecureSkipVerify(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(append([]Option{WithAddress(server.URL)}, tt.opts...)...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			_, err = c.Do(context.Background(), http.MethodGet, "sys/health", nil, nil)
			if tt.wantErr {
				var terr *TransportError
				if !errors.As(err, &terr) {
					t.Fatalf("Do() error = %v, want TransportError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
		})
	}
}

func TestNew_TLSErrors(t *testing.T) {
	dir := t.TempDir()
	notPEM := filepath.Join(dir, "bad.pem")
	if err := os.WriteFile(notPEM, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opt  Option
	}{
		{"missing ca file", WithCACert(filepath.Join(dir, "missing.pem"))},
		{"ca without certificates", WithCACert(notPEM)},
		{"cert without key", WithTLSConfig(TLSConfig{ClientCert: notPEM})},
		{"missing pkcs12", WithClientPKCS12(filepath.Join(dir, "missing.p12"), "pw")},
		{"invalid pkcs12", WithClientPKCS12(notPEM, "pw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Error("New() error = nil, want TLS error")
			}
		})
	}
}
