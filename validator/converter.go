// Package validator runs ozzo-validation rules and converts their errors into
// layered error codes.
package validator

import (
	"errors"
	"sort"
	"strings"

	"github.com/KOMKZ/go-yogan-boot/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ModuleCommon module code of shared errors
const ModuleCommon = 1

// ErrValidation a config section failed its rules; data["fields"] maps field
// names to messages
var ErrValidation = errcode.Register(errcode.New(ModuleCommon, 1010,
	"common", "error.common.validation_failed", "validation failed"))

// Validatable a config section carrying ozzo rules
type Validatable interface {
	Validate() error
}

// Validate runs v.Validate and converts ozzo field errors; other errors pass
// through unchanged
func Validate(section string, v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return ConvertValidationError(section, fieldErrs)
	}
	return err
}

// ConvertValidationError flattens nested field errors into dotted names
func ConvertValidationError(section string, fieldErrs validation.Errors) *errcode.LayeredError {
	fields := make(map[string]string)
	flatten(section, fieldErrs, fields)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name])
	}
	return ErrValidation.
		WithMsgf("invalid %s config: %s", section, strings.Join(parts, "; ")).
		WithData("fields", fields)
}

func flatten(prefix string, fieldErrs validation.Errors, out map[string]string) {
	for field, fieldErr := range fieldErrs {
		if fieldErr == nil {
			continue
		}
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			flatten(name, nested, out)
			continue
		}
		out[name] = fieldErr.Error()
	}
}
