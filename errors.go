// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrSchedulerTerminated is returned when attempting to shut down a
	// scheduler that has already been terminated.
	ErrSchedulerTerminated = errors.New(`reactive: scheduler has been terminated`)

	// ErrNilDispatcher is returned by [NewDispatcherScheduler] if the
	// dispatcher is nil.
	ErrNilDispatcher = errors.New(`reactive: dispatcher must not be nil`)

	// ErrInvalidThreshold is returned for a negative immediate threshold.
	ErrInvalidThreshold = errors.New(`reactive: immediate threshold must not be negative`)

	// ErrInvalidPriority is returned for an unknown [Priority].
	ErrInvalidPriority = errors.New(`reactive: invalid priority`)

	// ErrPriorityUnsupported is returned if [PriorityHigh] is configured
	// for a dispatcher that does not implement [PriorityDispatcher].
	ErrPriorityUnsupported = errors.New(`reactive: dispatcher does not support priority submission`)
)

// PanicError wraps a value recovered from a panic, raised by a production
// function, or by a user-supplied transform, predicate, or selector. It is
// delivered to the observer via OnError.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf(`reactive: recovered panic: %v`, e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type,
// enabling use with [errors.Is] and [errors.As].
//
// If the panic Value is not an error (e.g., a string), returns nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Is reports true for any *PanicError target, in addition to the standard
// wrapped error matching.
func (e *PanicError) Is(target error) bool {
	var panicTarget *PanicError
	return errors.As(target, &panicTarget)
}

// catchPanic calls fn, converting any panic into a *PanicError.
func catchPanic[R any](fn func() R) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	result = fn()
	return
}
