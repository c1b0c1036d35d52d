// Package log provides the logger for the whole project.
//
// The Logger is a thin wrapper around zap.SugaredLogger.
// The CLI logger writes info to stdout, warnings and errors to stderr,
// and everything to an optional log file. Tests use NewDebugLogger,
// messages can be read back and asserted.
package log

import (
	"io"

	"go.uber.org/zap/zapcore"
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

type Logger interface {
	baseLogger
	writers
}

// DebugLogger returns logs as string in tests.
// Every read returns messages logged since the previous read.
type DebugLogger interface {
	Logger
	ConnectTo(writer io.Writer)
	Truncate()
	AllMessages() string
	DebugMessages() string
	InfoMessages() string
	WarnMessages() string
	ErrorMessages() string
	WarnAndErrorMessages() string
}

type baseLogger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
	Sync() error
}

type writers interface {
	DebugWriter() *LevelWriter
	InfoWriter() *LevelWriter
	WarnWriter() *LevelWriter
	ErrorWriter() *LevelWriter
}
