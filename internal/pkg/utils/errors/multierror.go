package errors

// MultiError is a list of errors rendered as a bullet list.
type MultiError interface {
	Len() int
	Error() string
	Unwrap() []error
	StackTrace() StackTrace
	WrappedErrors() []error
	// Append adds one or more errors, a MultiError is flattened.
	Append(errs ...error)
	// AppendNested adds and returns a nested error, sub-errors can be added to it later.
	AppendNested(err error) NestedError
	// AppendWithPrefix adds the error prefixed with the message.
	AppendWithPrefix(err error, prefix string)
	AppendWithPrefixf(err error, format string, a ...any)
	// ErrorOrNil returns nil if the list is empty.
	ErrorOrNil() error
}

type multiErrorGetter interface {
	WrappedErrors() []error
}

type multiError struct {
	errs  []error
	trace StackTrace
}

func NewMultiError() MultiError {
	return &multiError{trace: callers()}
}

func (e *multiError) Len() int {
	return len(e.errs)
}

func (e *multiError) Error() string {
	return Format(e)
}

func (e *multiError) Unwrap() []error {
	return e.errs
}

func (e *multiError) StackTrace() StackTrace {
	return e.trace
}

func (e *multiError) WrappedErrors() []error {
	return e.errs
}

func (e *multiError) Append(errs ...error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		// Flatten a plain multi error, a nested error keeps its shape
		// nolint: errorlint
		switch v := err.(type) {
		case nestedErrorGetter:
			e.errs = append(e.errs, err)
		case multiErrorGetter:
			e.errs = append(e.errs, v.WrappedErrors()...)
		default:
			e.errs = append(e.errs, err)
		}
	}
}

func (e *multiError) AppendNested(err error) NestedError {
	nested := NewNestedError(err)
	e.errs = append(e.errs, nested)
	return nested
}

func (e *multiError) AppendWithPrefix(err error, prefix string) {
	e.Append(PrefixError(err, prefix))
}

func (e *multiError) AppendWithPrefixf(err error, format string, a ...any) {
	e.Append(PrefixErrorf(err, format, a...))
}

func (e *multiError) ErrorOrNil() error {
	if len(e.errs) == 0 {
		return nil
	}
	return e
}
