package config

import (
	"errors"
	"fmt"
)

// Validator configuration validation (implemented by each module)
type Validator interface {
	Validate() error
}

// SectionReader the part of a loader LoadSection needs
type SectionReader interface {
	UnmarshalKey(key string, v any) error
}

// LoadSection decodes the section at key over target's defaults and validates
// it; errors are prefixed with the section name
func LoadSection(r SectionReader, key string, target Validator) error {
	if err := r.UnmarshalKey(key, target); err != nil {
		return fmt.Errorf("read %s config: %w", key, err)
	}
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// ValidateAll runs every validator and joins the failures
func ValidateAll(validators ...Validator) error {
	var errs []error
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
