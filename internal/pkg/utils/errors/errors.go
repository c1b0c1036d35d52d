// Package errors provides error handling for the whole project.
//
// It is a drop-in replacement for the standard library errors package.
// In addition, each error carries a stack trace, errors can be composed
// to multi and nested errors, and the Format function renders any error
// tree as a readable bullet list.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error with the given message and a stack trace.
func New(msg string) error {
	return &baseError{err: errors.New(msg), trace: callers()}
}

// Errorf formats an error message, %w verb is supported.
func Errorf(format string, a ...any) error {
	return &baseError{err: fmt.Errorf(format, a...), trace: callers()}
}

// Wrap returns an error with a new message, the original error is available via Unwrap.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, err: err, trace: callers()}
}

// Wrapf returns an error with a new formatted message, the original error is available via Unwrap.
func Wrapf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, a...), err: err, trace: callers()}
}

// WithStack attaches the caller stack trace to the error, the message is unchanged.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &withStack{err: err, trace: callers()}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

type baseError struct {
	err   error
	trace StackTrace
}

func (e *baseError) Error() string {
	return e.err.Error()
}

func (e *baseError) StackTrace() StackTrace {
	return e.trace
}

// Unwrap returns the wrapped error, if the message was created with the %w verb.
func (e *baseError) Unwrap() error {
	return errors.Unwrap(e.err)
}

type wrappedError struct {
	msg   string
	err   error
	trace StackTrace
}

func (e *wrappedError) Error() string {
	return e.msg
}

func (e *wrappedError) StackTrace() StackTrace {
	return e.trace
}

func (e *wrappedError) Unwrap() error {
	return e.err
}

type withStack struct {
	err   error
	trace StackTrace
}

func (e *withStack) Error() string {
	return e.err.Error()
}

func (e *withStack) StackTrace() StackTrace {
	return e.trace
}

func (e *withStack) Unwrap() error {
	return e.err
}

// chain of errors, all items are visible to the Is/As functions.
type chain []error

func (e chain) Error() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Error()
}

func (e chain) Unwrap() []error {
	return e
}
