package endpoint

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vaultkit/client-go/internal/apierrors"
)

type samplePayload struct {
	RoleName string `json:"-" path:"role_name" validate:"required"`
	Token    string `json:"token" validate:"required"`
	NumUses  int    `json:"num_uses,omitempty" validate:"gte=0"`
	TTL      string `json:"ttl,omitempty"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		payload    samplePayload
		wantFields []string
		wantMsg    string
	}{
		{"valid", samplePayload{RoleName: "r", Token: "s.x"}, nil, ""},
		{"missing token", samplePayload{RoleName: "r"}, []string{"token"}, ""},
		{"missing both", samplePayload{}, []string{"role_name", "token"}, ""},
		{"invalid count", samplePayload{RoleName: "r", Token: "s.x", NumUses: -1}, []string{"num_uses"}, "invalid fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate("token create", &tt.payload)
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var verr *apierrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if diff := cmp.Diff(tt.wantFields, verr.Fields); diff != "" {
				t.Errorf("Fields mismatch (-want +got):\n%s", diff)
			}
			if verr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidate_NotAStruct(t *testing.T) {
	err := Validate("test", "not a struct")
	if !errors.Is(err, apierrors.ErrValidation) {
		t.Errorf("Validate() error = %v, want ErrValidation", err)
	}
}

func TestEncodeQuery(t *testing.T) {
	type listParams struct {
		List   bool   `schema:"list"`
		Filter string `schema:"filter,omitempty"`
	}

	query, err := EncodeQuery(&listParams{List: true})
	if err != nil {
		t.Fatalf("EncodeQuery() error = %v", err)
	}
	if query.Encode() != "list=true" {
		t.Errorf("EncodeQuery() = %s, want list=true", query.Encode())
	}
}
