package validation

import (
	"errors"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// New returns a validator that reports fields by their JSON names and knows
// the notblank rule used by the request schemas.
func New() *validatorv10.Validate {
	v := validatorv10.New(validatorv10.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// notblank rejects strings made only of whitespace.
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return v
}

// Fields flattens validation errors into namespace -> message pairs.
func Fields(err error) map[string]string {
	out := map[string]string{}

	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		out["error"] = err.Error()
		return out
	}

	for _, fe := range ve {
		out[fieldPath(fe.Namespace())] = message(fe)
	}
	return out
}

// fieldPath drops the root struct name, e.g. "OrderRequest.items[0].quantity" -> "items[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min", "gte":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}
