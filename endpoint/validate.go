package endpoint

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vaultkit/client-go/internal/apierrors"
)

var validate = newValidator()

// newValidator reports fields by their wire name: the path tag for
// positional parameters, otherwise the json tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("path"); name != "" {
			return name
		}
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the `validate` struct tags of payload and converts any
// failure into a ValidationError for request. It never performs I/O.
func Validate(request string, payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &apierrors.ValidationError{Request: request, Message: err.Error()}
	}

	verr := &apierrors.ValidationError{Request: request}
	onlyRequired := true
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fe.Field())
		if fe.Tag() != "required" {
			onlyRequired = false
		}
	}
	if !onlyRequired {
		verr.Message = "invalid fields"
	}
	return verr
}
