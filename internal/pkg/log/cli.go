package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCliLogger creates the logger for the CLI binary.
func NewCliLogger(stdout io.Writer, stderr io.Writer, logFile *File, verbose bool) Logger {
	var cores []zapcore.Core

	// Log to file
	if logFile != nil {
		cores = append(cores, fileCore(logFile))
	}

	// Log to stdout
	cores = append(cores, stdoutCore(stdout, verbose))

	// Log to stderr
	cores = append(cores, stderrCore(stderr, verbose))

	return loggerFromZap(zap.New(zapcore.NewTee(cores...)))
}

// stdoutCore writes the message only, info level by default, debug level in the verbose mode.
// Warnings and errors belong to the stderr core.
func stdoutCore(stdout io.Writer, verbose bool) zapcore.Core {
	minLevel := InfoLevel
	if verbose {
		minLevel = DebugLevel
	}
	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l < WarnLevel
	})
	return zapcore.NewCore(consoleEncoder(), zapcore.AddSync(stdout), enabler)
}

func stderrCore(stderr io.Writer, verbose bool) zapcore.Core {
	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= WarnLevel
	})
	return zapcore.NewCore(consoleEncoder(), zapcore.AddSync(stderr), enabler)
}

// fileCore writes all levels as single-line JSON with a timestamp.
func fileCore(logFile *File) zapcore.Core {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logFile.File()),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return true }),
	)
}

// consoleEncoder renders the plain message, without a level and a timestamp.
func consoleEncoder() zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "message",
		LineEnding: zapcore.DefaultLineEnding,
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}
