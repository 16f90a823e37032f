package model

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaViolation is returned when a required wire field is missing or has
	// the wrong JSON type.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrUnsupportedFirmware is returned when the firmware version cannot be parsed.
	ErrUnsupportedFirmware = errors.New("unsupported firmware")
	// ErrEncodingInvariant is returned when encoding a decoded document does not
	// reproduce it.
	ErrEncodingInvariant = errors.New("encoding invariant violation")
)

type SchemaViolationError struct {
	Entity string
	Key    string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s: %s", ErrSchemaViolation, e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s: %s.%s: %s", ErrSchemaViolation, e.Entity, e.Key, e.Reason)
}

func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}

type UnsupportedFirmwareError struct {
	Firmware string
	Reason   string
}

func (e *UnsupportedFirmwareError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrUnsupportedFirmware, e.Firmware, e.Reason)
}

func (e *UnsupportedFirmwareError) Unwrap() error {
	return ErrUnsupportedFirmware
}
