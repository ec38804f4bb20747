package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// slogTrace sits below slog.LevelDebug so trace output can be filtered separately
const slogTrace = slog.Level(-8)

// Logger provides leveled logging on top of log/slog
type Logger struct {
	component string
	handler   slog.Handler
}

// NewLogger creates a new logger with the specified level writing text records to w
func NewLogger(level LogLevel, w io.Writer) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})
	return &Logger{handler: handler}
}

// NewDefaultLogger creates a stderr logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")), os.Stderr)
}

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE onto a LogLevel, defaulting to INFO
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelTrace:
		return slogTrace
	default:
		return slog.LevelInfo
	}
}

// With returns a logger that tags every record with component
func (l *Logger) With(component string) *Logger {
	return &Logger{component: component, handler: l.handler}
}

func (l *Logger) log(level slog.Level, format string, args ...interface{}) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level) {
		return
	}
	logger := slog.New(l.handler)
	if l.component != "" {
		logger = logger.With("component", l.component)
	}
	logger.Log(ctx, level, fmt.Sprintf(format, args...))
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(slog.LevelError, format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(slog.LevelWarn, format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(slog.LevelInfo, format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(slog.LevelDebug, format, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(slogTrace, format, args...)
}

// DiscardLogger returns a logger that drops every record
func DiscardLogger() *Logger {
	return NewLogger(LogLevelError, io.Discard)
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
