// Package validator converts ozzo-validation errors into layered error codes
package validator

import (
	"net/http"
	"sort"
	"strings"

	"github.com/Hycient195/academia-pro-cache/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidation common validation failure (module 1 common, business 1010)
var ErrValidation = errcode.Register(errcode.New(
	1, 1010,
	"common",
	"error.common.validation_failed",
	"validation failed",
	http.StatusBadRequest,
))

// Validatable is implemented by configs and request DTOs
type Validatable interface {
	Validate() error
}

// ValidateRequest runs Validate and converts ozzo errors to a LayeredError
func ValidateRequest(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}

	if validationErrs, ok := err.(validation.Errors); ok {
		return ConvertValidationError(validationErrs)
	}

	return err
}

// ConvertValidationError flattens nested ozzo errors into a "fields" payload
// Nested struct errors use dotted paths, e.g. "redis.port"
func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string)
	flatten("", validationErrs, fields)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msg := "validation failed"
	if len(names) > 0 {
		msg += ": " + strings.Join(names, ", ")
	}
	return ErrValidation.WithMsg(msg).WithData("fields", fields)
}

func flatten(prefix string, errs validation.Errors, out map[string]string) {
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}
		if nested, ok := fieldErr.(validation.Errors); ok {
			flatten(name, nested, out)
			continue
		}
		out[name] = fieldErr.Error()
	}
}
