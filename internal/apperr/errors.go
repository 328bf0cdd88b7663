// Package apperr defines the error taxonomy shared by every manager and surface.
package apperr

import "errors"

var (
	// ErrNotFound reports a lookup by id, name or phone that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrFileAbsent reports a missing backing store or import file.
	ErrFileAbsent = errors.New("file absent")
	// ErrMalformedInput reports a value that could not be coerced (date, amount, expression, row).
	ErrMalformedInput = errors.New("malformed input")
	// ErrDivisionByZero is returned by the calculator only.
	ErrDivisionByZero = errors.New("division by zero")
)
