package log

import (
	"go.uber.org/zap/zapcore"
)

// MemoryLogger buffers log messages until the target logger exists,
// the CLI uses it before the log file path is known.
type MemoryLogger struct {
	*debugLogger
	entries []memoryEntry
}

type memoryEntry struct {
	level    zapcore.Level
	template string
	args     []any
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{debugLogger: NewDebugLogger().(*debugLogger)}
}

func (l *MemoryLogger) Debug(args ...any) {
	l.record(DebugLevel, "", args)
	l.debugLogger.Debug(args...)
}

func (l *MemoryLogger) Info(args ...any) {
	l.record(InfoLevel, "", args)
	l.debugLogger.Info(args...)
}

func (l *MemoryLogger) Warn(args ...any) {
	l.record(WarnLevel, "", args)
	l.debugLogger.Warn(args...)
}

func (l *MemoryLogger) Error(args ...any) {
	l.record(ErrorLevel, "", args)
	l.debugLogger.Error(args...)
}

func (l *MemoryLogger) Debugf(template string, args ...any) {
	l.record(DebugLevel, template, args)
	l.debugLogger.Debugf(template, args...)
}

func (l *MemoryLogger) Infof(template string, args ...any) {
	l.record(InfoLevel, template, args)
	l.debugLogger.Infof(template, args...)
}

func (l *MemoryLogger) Warnf(template string, args ...any) {
	l.record(WarnLevel, template, args)
	l.debugLogger.Warnf(template, args...)
}

func (l *MemoryLogger) Errorf(template string, args ...any) {
	l.record(ErrorLevel, template, args)
	l.debugLogger.Errorf(template, args...)
}

// CopyLogsTo replays all buffered messages to the target logger.
func (l *MemoryLogger) CopyLogsTo(target Logger) {
	for _, e := range l.entries {
		switch {
		case e.template == "" && e.level == DebugLevel:
			target.Debug(e.args...)
		case e.template == "" && e.level == InfoLevel:
			target.Info(e.args...)
		case e.template == "" && e.level == WarnLevel:
			target.Warn(e.args...)
		case e.template == "":
			target.Error(e.args...)
		case e.level == DebugLevel:
			target.Debugf(e.template, e.args...)
		case e.level == InfoLevel:
			target.Infof(e.template, e.args...)
		case e.level == WarnLevel:
			target.Warnf(e.template, e.args...)
		default:
			target.Errorf(e.template, e.args...)
		}
	}
}

func (l *MemoryLogger) record(level zapcore.Level, template string, args []any) {
	l.entries = append(l.entries, memoryEntry{level: level, template: template, args: args})
}
