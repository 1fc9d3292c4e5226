// Package errors provides comprehensive error handling utilities for the library.
//
// This file contains panic recovery utilities that convert unexpected panics
// (typically out-of-range matrix access inside numerical kernels) into
// structured errors with debugging information.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError represents an error that was created from a recovered panic.
// It includes the original panic value and stack trace information.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Operation identifies where the panic was recovered
	Operation string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns nil as PanicError doesn't wrap another error by default.
func (e *PanicError) Unwrap() error {
	return nil
}

// String provides detailed information including stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a new PanicError with the given operation context and panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover is a utility function to be used with defer to recover from panics
// and convert them into errors.
//
// Usage:
//
//	func (m *SomeModel) Fit(X, y mat.Matrix) (err error) {
//	    defer errors.Recover(&err, "SomeModel.Fit")
//	    // ...
//	}
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)
		*err = WithStack(panicErr)
	}
}

// RecoverWithHandler recovers from a panic and passes the resulting error
// to the supplied handler instead of an error return value.
func RecoverWithHandler(operation string, handler func(error)) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)
		if handler != nil {
			handler(WithStack(panicErr))
		}
	}
}
