package sys_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	vaultkit "github.com/vaultkit/client-go"
	"github.com/vaultkit/client-go/internal/vaulttest"
	"github.com/vaultkit/client-go/sys"
)

func TestMounts(t *testing.T) {
	srv := vaulttest.New(t)
	c, err := vaultkit.New(vaultkit.WithAddress(srv.URL), vaultkit.WithToken(vaulttest.RootToken))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	opts := sys.NewEnableMountRequest().
		Description("legacy secrets").
		Options(map[string]string{"version": "1"})
	if err := sys.EnableMount(ctx, c, "kv_v1", "kv", opts); err != nil {
		t.Fatalf("EnableMount() error = %v", err)
	}

	body := srv.LastRequest().Body
	if got := gjson.GetBytes(body, "type").String(); got != "kv" {
		t.Errorf("type = %q, want kv", got)
	}
	if got := gjson.GetBytes(body, "options.version").String(); got != "1" {
		t.Errorf("options.version = %q, want 1", got)
	}

	mounts, err := sys.ListMounts(ctx, c)
	if err != nil {
		t.Fatalf("ListMounts() error = %v", err)
	}
	if info, ok := mounts["kv_v1"]; !ok || info.Type != "kv" {
		t.Errorf("mounts[kv_v1] = %+v, %v", info, ok)
	}

	if err := sys.EnableMount(ctx, c, "kv_v1", "kv", nil); !errors.Is(err, vaultkit.ErrInvalidRequest) {
		t.Errorf("EnableMount() twice error = %v, want invalid request", err)
	}

	if err := sys.DisableMount(ctx, c, "kv_v1"); err != nil {
		t.Fatalf("DisableMount() error = %v", err)
	}
	mounts, err = sys.ListMounts(ctx, c)
	if err != nil {
		t.Fatalf("ListMounts() error = %v", err)
	}
	if _, ok := mounts["kv_v1"]; ok {
		t.Error("kv_v1 still mounted after DisableMount")
	}
}

func TestEnableMount_RequiresPathAndType(t *testing.T) {
	tests := []struct {
		name, path, engine string
	}{
		{"no path", "", "kv"},
		{"no type", "secrets", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.NewEnableMountRequest().Path(tt.path).Type(tt.engine).Build()
			if !errors.Is(err, vaultkit.ErrValidation) {
				t.Errorf("Build() error = %v, want validation error", err)
			}
		})
	}
}
