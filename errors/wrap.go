// Package errors provides the github.com/pkg/errors API plus the VeloError
// code-based taxonomy used at external interfaces. Internal code always wraps
// so a logged error carries a stack trace; user-facing VeloErrors are passed
// through untouched.
package errors

import (
	stderrors "errors" //nolint: depguard

	"github.com/pkg/errors" //nolint: depguard
)

// New returns an error with the supplied message and a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Errorf formats according to a format specifier and returns an error with a
// stack trace.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Wrap returns an error annotating err with a stack trace and the supplied
// message. If err is nil, Wrap returns nil.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf returns an error annotating err with a stack trace and the format
// specifier. If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// WithStack annotates err with a stack trace at the point WithStack was
// called. If err is nil, WithStack returns nil.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// MaybeAddStack wraps err with a stack trace unless it is already a VeloError.
// VeloErrors are constructed at the reporting boundary and gain nothing from
// a trace of the boundary itself.
func MaybeAddStack(err error) error {
	var verr VeloError
	if stderrors.As(err, &verr) {
		return err
	}
	return errors.WithStack(err)
}

// Cause returns the underlying cause of the error, if possible.
func Cause(err error) error {
	return errors.Cause(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target, and if so,
// sets target to that error value and returns true.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Unwrap returns the result of calling the Unwrap method on err, if err's
// type contains an Unwrap method returning error. Otherwise, Unwrap returns
// nil.
func Unwrap(err error) error { return stderrors.Unwrap(err) }
