package log

import (
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDebugLogger creates an in-memory logger for tests.
func NewDebugLogger() DebugLogger {
	recorder := &recorder{}
	core := zapcore.NewCore(
		debugEncoder(),
		recorder,
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return true }),
	)
	return &debugLogger{
		zapLogger: zapLogger{SugaredLogger: zap.New(core).Sugar()},
		recorder:  recorder,
	}
}

type debugLogger struct {
	zapLogger
	recorder *recorder
}

// recorder is the write syncer behind the debug logger,
// each written line is kept with its level prefix.
type recorder struct {
	lock      sync.Mutex
	lines     []string
	connected []io.Writer
}

func (r *recorder) Write(p []byte) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.lines = append(r.lines, string(p))
	for _, w := range r.connected {
		_, _ = w.Write(p)
	}
	return len(p), nil
}

func (r *recorder) Sync() error {
	return nil
}

func (l *debugLogger) ConnectTo(writer io.Writer) {
	l.recorder.lock.Lock()
	defer l.recorder.lock.Unlock()
	l.recorder.connected = append(l.recorder.connected, writer)
}

func (l *debugLogger) Truncate() {
	l.recorder.lock.Lock()
	defer l.recorder.lock.Unlock()
	l.recorder.lines = nil
}

// AllMessages returns all messages logged since the previous read and truncates the buffer.
func (l *debugLogger) AllMessages() string {
	return l.read(DebugLevel, InfoLevel, WarnLevel, ErrorLevel)
}

func (l *debugLogger) DebugMessages() string {
	return l.read(DebugLevel)
}

func (l *debugLogger) InfoMessages() string {
	return l.read(InfoLevel)
}

func (l *debugLogger) WarnMessages() string {
	return l.read(WarnLevel)
}

func (l *debugLogger) ErrorMessages() string {
	return l.read(ErrorLevel)
}

func (l *debugLogger) WarnAndErrorMessages() string {
	return l.read(WarnLevel, ErrorLevel)
}

func (l *debugLogger) read(levels ...zapcore.Level) string {
	_ = l.Sync()
	l.recorder.lock.Lock()
	defer l.recorder.lock.Unlock()

	var out strings.Builder
	for _, line := range l.recorder.lines {
		for _, level := range levels {
			if strings.HasPrefix(line, levelPrefix(level)) {
				out.WriteString(line)
				break
			}
		}
	}

	l.recorder.lines = nil
	return out.String()
}

func levelPrefix(level zapcore.Level) string {
	return strings.ToUpper(level.String()) + "  "
}

// debugEncoder renders "LEVEL  message" lines.
func debugEncoder() zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: "  ",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}
