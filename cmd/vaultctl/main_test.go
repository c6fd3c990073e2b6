package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"

	"github.com/vaultkit/client-go/internal/vaulttest"
)

func runCLI(t *testing.T, srv *vaulttest.Server, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if srv != nil {
		args = append([]string{"--address", srv.URL, "--token", vaulttest.RootToken}, args...)
	}
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestKV1Commands(t *testing.T) {
	srv := vaulttest.New(t)
	srv.Mount("kv_v1", "kv")

	if _, err := runCLI(t, srv, "kv1", "put", "kv_v1", "mysecret/foo", "key1=value1", "key2=value2", "port:=5432"); err != nil {
		t.Fatalf("kv1 put error = %v", err)
	}

	out, err := runCLI(t, srv, "kv1", "get", "kv_v1", "mysecret/foo")
	if err != nil {
		t.Fatalf("kv1 get error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("parse output %q: %v", out, err)
	}
	want := map[string]any{"key1": "value1", "key2": "value2", "port": float64(5432)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kv1 get mismatch (-want +got):\n%s", diff)
	}

	out, err = runCLI(t, srv, "kv1", "get", "--field", "key2", "kv_v1", "mysecret/foo")
	if err != nil {
		t.Fatalf("kv1 get --field error = %v", err)
	}
	if strings.TrimSpace(out) != "value2" {
		t.Errorf("kv1 get --field = %q, want value2", out)
	}

	out, err = runCLI(t, srv, "kv1", "list", "kv_v1", "mysecret")
	if err != nil {
		t.Fatalf("kv1 list error = %v", err)
	}
	if strings.TrimSpace(out) != "foo" {
		t.Errorf("kv1 list = %q, want foo", out)
	}

	out, err = runCLI(t, srv, "kv1", "list", "kv_v1")
	if err != nil {
		t.Fatalf("kv1 list at mount root error = %v", err)
	}
	if strings.TrimSpace(out) != "mysecret/" {
		t.Errorf("kv1 list at mount root = %q, want mysecret/", out)
	}

	if _, err := runCLI(t, srv, "kv1", "delete", "kv_v1", "mysecret/foo"); err != nil {
		t.Fatalf("kv1 delete error = %v", err)
	}
	if _, err := runCLI(t, srv, "kv1", "get", "kv_v1", "mysecret/foo"); err == nil {
		t.Error("kv1 get after delete succeeded")
	}
}

func TestTokenCommands(t *testing.T) {
	srv := vaulttest.New(t)

	out, err := runCLI(t, srv, "token", "create", "--policy", "ops", "--ttl", "1h", "--metadata", "team=infra")
	if err != nil {
		t.Fatalf("token create error = %v", err)
	}
	tok := gjson.Get(out, "client_token").String()
	accessor := gjson.Get(out, "accessor").String()
	if tok == "" || accessor == "" {
		t.Fatalf("token create output = %s", out)
	}
	if got := gjson.GetBytes(srv.LastRequest().Body, "renewable").Exists(); got {
		t.Error("renewable sent without --renewable")
	}

	out, err = runCLI(t, srv, "token", "lookup", "--accessor", accessor)
	if err != nil {
		t.Fatalf("token lookup --accessor error = %v", err)
	}
	if gjson.Get(out, "meta.team").String() != "infra" {
		t.Errorf("lookup meta = %s", gjson.Get(out, "meta").Raw)
	}

	out, err = runCLI(t, srv, "token", "renew", "--increment", "30m", tok)
	if err != nil {
		t.Fatalf("token renew error = %v", err)
	}
	if gjson.Get(out, "lease_duration").Int() != 1800 {
		t.Errorf("renew lease_duration = %s", gjson.Get(out, "lease_duration").Raw)
	}

	if _, err := runCLI(t, srv, "token", "revoke", tok); err != nil {
		t.Fatalf("token revoke error = %v", err)
	}
	if _, err := runCLI(t, srv, "token", "lookup", tok); err == nil {
		t.Error("lookup of revoked token succeeded")
	}
}

func TestMountCommands(t *testing.T) {
	srv := vaulttest.New(t)

	if _, err := runCLI(t, srv, "mount", "enable", "--option", "version=1", "legacy", "kv"); err != nil {
		t.Fatalf("mount enable error = %v", err)
	}
	out, err := runCLI(t, srv, "mount", "list")
	if err != nil {
		t.Fatalf("mount list error = %v", err)
	}
	if !strings.Contains(out, "legacy/\tkv") {
		t.Errorf("mount list = %q, want legacy/ kv", out)
	}
	if _, err := runCLI(t, srv, "mount", "disable", "legacy"); err != nil {
		t.Fatalf("mount disable error = %v", err)
	}
}

func TestEnvFile(t *testing.T) {
	srv := vaulttest.New(t)
	t.Setenv("VAULT_ADDR", "")
	t.Setenv("VAULT_TOKEN", "")
	os.Unsetenv("VAULT_ADDR")
	os.Unsetenv("VAULT_TOKEN")

	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "VAULT_ADDR=" + srv.URL + "\nVAULT_TOKEN=" + vaulttest.RootToken + "\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, nil, "--env-file", envFile, "token", "lookup")
	if err != nil {
		t.Fatalf("token lookup error = %v", err)
	}
	if gjson.Get(out, "id").String() != vaulttest.RootToken {
		t.Errorf("lookup-self id = %s", gjson.Get(out, "id").String())
	}
}

func TestRunErrors(t *testing.T) {
	srv := vaulttest.New(t)

	tests := []struct {
		name string
		srv  *vaulttest.Server
		args []string
	}{
		{name: "unknown command", srv: srv, args: []string{"frobnicate"}},
		{name: "bad log level", srv: srv, args: []string{"--log-level", "loud", "token", "lookup"}},
		{name: "missing env file", args: []string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "token", "lookup"}},
		{name: "revoke needs target", srv: srv, args: []string{"token", "revoke"}},
		{name: "role and orphan", srv: srv, args: []string{"token", "create", "--role", "r", "--orphan"}},
		{name: "bad pair", srv: srv, args: []string{"kv1", "put", "kv", "foo", "novalue"}},
		{name: "kv1 get arity", srv: srv, args: []string{"kv1", "get", "kv"}},
		{name: "watch root token", srv: srv, args: []string{"token", "watch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.srv, tt.args...); err == nil {
				t.Error("run() error = nil, want error")
			}
		})
	}
}

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    string
		wantErr bool
	}{
		{name: "strings", pairs: []string{"a=1", "b=two"}, want: `{"a":"1","b":"two"}`},
		{name: "raw json", pairs: []string{"n:=1", "ok:=true", "o:={\"x\":1}"}, want: `{"n":1,"ok":true,"o":{"x":1}}`},
		{name: "value with equals", pairs: []string{"url=http://h/?a=b"}, want: `{"url":"http://h/?a=b"}`},
		{name: "dotted key", pairs: []string{"db.host=x"}, want: `{"db.host":"x"}`},
		{name: "missing value", pairs: []string{"a"}, wantErr: true},
		{name: "empty key", pairs: []string{"=x"}, wantErr: true},
		{name: "invalid json", pairs: []string{"a:={"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePairs(tt.pairs)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePairs() = %s, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePairs() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("parsePairs() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv(envLogLevel, "debug")
	lvl, err := parseLogLevel("")
	if err != nil || lvl.String() != "debug" {
		t.Errorf("parseLogLevel(env) = %v, %v", lvl, err)
	}
	lvl, err = parseLogLevel("ERROR")
	if err != nil || lvl.String() != "error" {
		t.Errorf("parseLogLevel(ERROR) = %v, %v", lvl, err)
	}
}
