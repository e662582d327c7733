// Package domain defines core types, ports, and errors for the column hashing service.
package domain

import (
	"errors"
	"fmt"
)

// ValidationError indicates invalid input that was rejected before any
// parsing or store access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ParseError indicates the SQL grammar rejected the statement.
type ParseError struct {
	Dialect string
	Message string
}

func (e *ParseError) Error() string {
	if e.Dialect == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (dialect %s)", e.Message, e.Dialect)
}

// StoreError indicates the mapping store could not be reached or failed a
// read or write.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("mapping store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// ConflictError indicates a write collided with an existing record.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrParse creates a ParseError for the given dialect.
func ErrParse(dialect string, format string, args ...interface{}) *ParseError {
	return &ParseError{Dialect: dialect, Message: fmt.Sprintf(format, args...)}
}

// ErrStore wraps err as a StoreError for the named operation.
func ErrStore(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrorKind returns the name of the error's kind for transports that report
// it alongside the message. Unknown errors are reported as "Error".
func ErrorKind(err error) string {
	var validation *ValidationError
	var parse *ParseError
	var conflict *ConflictError
	var store *StoreError

	switch {
	case errors.As(err, &validation):
		return "ValidationError"
	case errors.As(err, &parse):
		return "ParseError"
	case errors.As(err, &conflict):
		return "ConflictError"
	case errors.As(err, &store):
		return "StoreError"
	default:
		return "Error"
	}
}
