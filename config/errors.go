package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is the root of every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// A FieldError describes one rejected configuration field.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *FieldError) Unwrap() error {
	return ErrInvalidConfig
}

// ValidationErrors collects every field rejected by Validate.
type ValidationErrors []*FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}

	return ErrInvalidConfig.Error() + ": " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrInvalidConfig and errors.As reach each
// field error.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e)+1)
	errs = append(errs, ErrInvalidConfig)

	for _, fe := range e {
		errs = append(errs, fe)
	}

	return errs
}

// Fields returns the names of the rejected fields in order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, fe := range e {
		fields = append(fields, fe.Field)
	}

	return fields
}
