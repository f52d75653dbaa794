package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of a log level
func (l Level) String() string {
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

// ParseLevel parses a log level string
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Logger is a leveled printf-style logger backed by zap.
// Output is discarded until a file or writer is attached, since the
// terminal belongs to the TUI.
type Logger struct {
	mu    sync.Mutex
	level Level
	zl    *zap.SugaredLogger
	file  *os.File
}

// Default is the default logger instance
var Default *Logger

func init() {
	Default = New()
}

// New creates a new logger based on environment variables
func New() *Logger {
	l := &Logger{level: LevelInfo}
	l.zl = build(io.Discard)

	if levelStr := os.Getenv("CPMFLOW_LOG_LEVEL"); levelStr != "" {
		if level, err := ParseLevel(levelStr); err == nil {
			l.level = level
		}
	}

	if logFile := os.Getenv("CPMFLOW_LOG_FILE"); logFile != "" {
		_ = l.openFile(logFile)
	}

	return l
}

// build creates a console-encoded zap logger writing to w.
func build(w io.Writer) *zap.SugaredLogger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    bracketLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(zapcore.Lock(zapcore.AddSync(w))),
		zapcore.DebugLevel, // filtering happens in Logger.log
	)
	return zap.New(core).Sugar()
}

// bracketLevelEncoder renders levels as [INFO], [WARN], ...
func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

func (l *Logger) openFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = f
	l.zl = build(f)
	return nil
}

// Configure applies a level and optional log file, typically from config.
// An empty level keeps the current one.
func (l *Logger) Configure(level, file string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level != "" {
		lv, err := ParseLevel(level)
		if err != nil {
			return err
		}
		l.level = lv
	}
	if file != "" {
		return l.openFile(file)
	}
	return nil
}

// Close flushes and closes any open file handles
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.zl.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.zl = build(io.Discard)
		return err
	}
	return nil
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl = build(w)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LevelDebug, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LevelInfo, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(LevelWarn, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LevelError, format, v...)
}

func (l *Logger) log(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	switch level {
	case LevelDebug:
		l.zl.Debugf(format, v...)
	case LevelInfo:
		l.zl.Infof(format, v...)
	case LevelWarn:
		l.zl.Warnf(format, v...)
	default:
		l.zl.Errorf(format, v...)
	}
}

// Package-level functions that use the default logger

// Debug logs a debug message using the default logger
func Debug(format string, v ...interface{}) {
	Default.Debug(format, v...)
}

// Info logs an info message using the default logger
func Info(format string, v ...interface{}) {
	Default.Info(format, v...)
}

// Warn logs a warning message using the default logger
func Warn(format string, v ...interface{}) {
	Default.Warn(format, v...)
}

// Error logs an error message using the default logger
func Error(format string, v ...interface{}) {
	Default.Error(format, v...)
}

// Configure configures the default logger
func Configure(level, file string) error {
	return Default.Configure(level, file)
}

// Close closes the default logger
func Close() error {
	return Default.Close()
}
