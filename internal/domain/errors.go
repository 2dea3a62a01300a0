package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

// ValidationError aggregates every violation found in one pass so the
// caller can display all of them at once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// ConflictError names the field and value that collided with an existing
// record (slug, sku, product type name).
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// ReferentialError reports a broken or guarded reference, e.g. deleting a
// product type that products still point at.
type ReferentialError struct {
	Msg string
}

func (e *ReferentialError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Problems: []string{fmt.Sprintf(format, args...)}}
}
