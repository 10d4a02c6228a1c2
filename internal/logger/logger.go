// Package logger provides the leveled logger used across simmr. It supports
// three levels: off (no output), normal (info/warn/error), and verbose
// (includes debug). Output goes through zap; the printf-style methods keep
// call sites short. The logger is safe for concurrent use.
package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level controls the verbosity of the logger.
type Level int

const (
	// LevelOff disables all log output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose enables all output including debug.
	LevelVerbose
)

// ParseLevel maps "off", "normal"/"info" and "verbose"/"debug" to a Level.
// Unknown names yield LevelNormal.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "quiet", "none":
		return LevelOff
	case "verbose", "debug":
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// Logger is a leveled logger backed by zap.
type Logger struct {
	atom  zap.AtomicLevel
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// New creates a logger with the given level, writing to the given output.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.CallerKey = ""

	atom := zap.NewAtomicLevelAt(zapLevel(level))
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(out), atom)
	base := zap.New(core)

	return &Logger{
		atom:  atom,
		base:  base,
		sugar: base.Sugar(),
	}
}

// zapLevel maps a Level to the minimum zap level it lets through.
// LevelOff maps past FatalLevel so nothing is enabled.
func zapLevel(l Level) zapcore.Level {
	switch {
	case l <= LevelOff:
		return zapcore.FatalLevel + 1
	case l >= LevelVerbose:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLevel changes the log level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.atom.SetLevel(zapLevel(level))
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	switch lvl := l.atom.Level(); {
	case lvl > zapcore.FatalLevel:
		return LevelOff
	case lvl <= zapcore.DebugLevel:
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// Zap returns the underlying structured logger.
func (l *Logger) Zap() *zap.Logger { return l.base }

// With returns a child logger that adds the given key/value pairs to
// every entry.
func (l *Logger) With(args ...any) *Logger {
	child := l.sugar.With(args...)
	return &Logger{atom: l.atom, base: child.Desugar(), sugar: child}
}

// Sync flushes buffered output.
func (l *Logger) Sync() error { return l.base.Sync() }

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}
