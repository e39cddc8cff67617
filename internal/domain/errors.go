package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyExists signals that the value has already been analyzed.
	ErrAlreadyExists = errors.New("string already exists")
	// ErrNotFound signals a lookup or delete miss.
	ErrNotFound = errors.New("string not found")
	// ErrParseFailure signals a natural-language query that matched no rule.
	ErrParseFailure = errors.New("unable to parse natural language query")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message())
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Message is the client-facing description, e.g. `"value" must not be empty`.
func (e *ValidationError) Message() string {
	return fmt.Sprintf("%q %s", e.Field, e.Reason)
}

// ParseError wraps ErrParseFailure with the rule that rejected the phrase.
type ParseError struct {
	Rule string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrParseFailure.Error(), e.Reason())
}

func (e *ParseError) Unwrap() []error { return []error{ErrParseFailure, e.Err} }

// Reason names the rule and its diagnostic, e.g. `rule longer_than: number out of range`.
func (e *ParseError) Reason() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
