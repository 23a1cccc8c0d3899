package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVendorAvailable is returned when no candidate vendor yields a finite total cost.
	ErrNoVendorAvailable = errors.New("no vendor available")

	// ErrMissingField marks an inventory item lacking a mandatory attribute.
	ErrMissingField = errors.New("missing required field")
)

// MissingFieldError names the attribute an inventory item is missing.
type MissingFieldError struct {
	Field string
	SKU   string
}

func (e *MissingFieldError) Error() string {
	if e.SKU == "" {
		return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
	}
	return fmt.Sprintf("%s: %s (sku %s)", ErrMissingField, e.Field, e.SKU)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}
