package errors

import (
	"fmt"
	"runtime"
	"strings"
	"unicode"
)

// FormatConfig modifies rendering of an error tree, see FormatOption functions.
type FormatConfig struct {
	WithStack   bool
	WithUnwrap  bool
	AsSentences bool
}

type FormatOption func(*FormatConfig)

// MessageFormatter formats each error message.
type MessageFormatter func(msg string, trace StackTrace, config FormatConfig) string

// PrefixFormatter formats a prefix followed by a list of errors.
type PrefixFormatter func(prefix string) string

// FormatWithStack adds the "[file:line]" suffix to each message
// and unwraps wrapped errors, so the trace of each level is visible.
func FormatWithStack() FormatOption {
	return func(c *FormatConfig) {
		c.WithStack = true
		c.WithUnwrap = true
	}
}

// FormatWithUnwrap renders also errors hidden behind the Unwrap method.
func FormatWithUnwrap() FormatOption {
	return func(c *FormatConfig) {
		c.WithUnwrap = true
	}
}

// FormatAsSentences renders each message with the first letter upper-cased and a trailing dot.
func FormatAsSentences() FormatOption {
	return func(c *FormatConfig) {
		c.AsSentences = true
	}
}

// Format renders the error as a string, a multi error is rendered as a bullet list.
func Format(err error, opts ...FormatOption) string {
	w := NewWriter(defaultMessageFormatter, defaultPrefixFormatter, opts...)
	w.WriteError(err)
	return w.String()
}

func defaultMessageFormatter(msg string, trace StackTrace, config FormatConfig) string {
	if config.AsSentences {
		msg = firstToUpper(msg)
		if !strings.HasSuffix(msg, ".") && !strings.HasSuffix(msg, ":") {
			msg += "."
		}
	}
	if config.WithStack && len(trace) > 0 {
		frame := trace[0]
		fn := runtime.FuncForPC(frame)
		file, line := fn.FileLine(frame)
		msg = fmt.Sprintf("%s [%s:%d]", msg, file, line)
	}
	return msg
}

func defaultPrefixFormatter(prefix string) string {
	return strings.TrimRight(prefix, ".,:") + ":"
}

func firstToUpper(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
