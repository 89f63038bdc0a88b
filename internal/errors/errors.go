// Package errors provides structured error types for casemk.
//
// Every failure raised by the layout engine or the case assembler carries a
// machine-readable code. Failures caused by a span that is too small also
// carry a Constraint naming the axis and the required and available sizes,
// so callers can report exactly which dimension was violated.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDimension, "width must be positive, got %g", w)
//	if errors.Is(err, errors.ErrCodeLayoutInfeasible) {
//	    c := errors.ConstraintOf(err)
//	    fmt.Println(c.Axis, c.Required, c.Available)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure kinds of the generator.
const (
	// Input validation errors
	ErrCodeInvalidDimension Code = "INVALID_DIMENSION"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidInput     Code = "INVALID_INPUT"

	// Feasibility errors
	ErrCodeLayoutInfeasible   Code = "LAYOUT_INFEASIBLE"
	ErrCodeGeometryInfeasible Code = "GEOMETRY_INFEASIBLE"

	// Output errors
	ErrCodeIO Code = "IO_ERROR"
)

// Constraint identifies the span that could not be satisfied.
type Constraint struct {
	Axis      string  // "width", "length", "count", "corner_radius", ...
	Required  float64 // Span (or count) the request needs
	Available float64 // Span (or count) the bound provides
}

// String formats the constraint for messages.
func (c Constraint) String() string {
	if c.Axis == "count" {
		return fmt.Sprintf("%s: requires %d, available %d", c.Axis, int(c.Required), int(c.Available))
	}
	return fmt.Sprintf("%s: requires %.2f mm, available %.2f mm", c.Axis, c.Required, c.Available)
}

// Error is a structured error with a code, an optional constraint and an
// optional cause.
type Error struct {
	Code       Code        // Machine-readable error code
	Message    string      // Human-readable message
	Constraint *Constraint // Violated span (optional)
	Cause      error       // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.UserMessage())
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// UserMessage returns the message and constraint without the code prefix.
func (e *Error) UserMessage() string {
	if e.Constraint != nil {
		return fmt.Sprintf("%s (%s)", e.Message, e.Constraint)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Infeasible creates an Error carrying the violated constraint.
func Infeasible(code Code, axis string, required, available float64, format string, args ...any) *Error {
	return &Error{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Constraint: &Constraint{Axis: axis, Required: required, Available: available},
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ConstraintOf returns the constraint attached to err, or nil.
func ConstraintOf(err error) *Constraint {
	var e *Error
	if errors.As(err, &e) {
		return e.Constraint
	}
	return nil
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return err.Error()
}
