package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a level name ("debug", "INFO", ...) to a LogLevel.
// Unknown names fall back to LevelInfo so a misconfigured environment
// variable never silences the server.
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
	logFile       *os.File
)

// Init initializes the logging system writing to the given output.
// This should be called once at application startup. The MCP stdio
// transport owns stdout, so output must never be os.Stdout when serving
// over stdio.
func Init(level LogLevel, output io.Writer) {
	opts := &slog.HandlerOptions{
		Level: level.SlogLevel(),
	}
	handler := slog.NewTextHandler(output, opts)

	mu.Lock()
	defaultLogger = slog.New(handler)
	mu.Unlock()

	slog.SetDefault(slog.New(handler))
}

// InitToFile initializes the logging system writing to the named file,
// creating or appending as needed.
func InitToFile(level LogLevel, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	mu.Lock()
	logFile = f
	mu.Unlock()

	Init(level, f)
	return nil
}

// Close releases the log file, if one is open. Safe to call when logging
// goes to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()

	if logger == nil {
		// Logging before Init falls back to stderr rather than dropping
		// the entry.
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	if !logger.Enabled(context.Background(), level.SlogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	var slogAttrs []slog.Attr
	slogAttrs = append(slogAttrs, slog.String("subsystem", subsystem))
	if err != nil {
		slogAttrs = append(slogAttrs, slog.String("error", err.Error()))
	}

	logger.LogAttrs(context.Background(), level.SlogLevel(), msg, slogAttrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}
