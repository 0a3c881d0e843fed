package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level represents logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns string representation of log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses log level from string
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes levelled key=value lines. Child loggers created with With
// share the writer and level of their parent.
type Logger struct {
	level  *Level
	logger *log.Logger
	fields []interface{}
	now    func() time.Time
}

// New creates a new logger with specified level
func New(level Level) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a new logger with specified level and writer
func NewWithWriter(level Level, w io.Writer) *Logger {
	lvl := level
	return &Logger{
		level:  &lvl,
		logger: log.New(w, "", 0),
		now:    time.Now,
	}
}

// With returns a child logger that prepends the given key/value pairs to
// every line it writes.
func (l *Logger) With(fields ...interface{}) *Logger {
	merged := make([]interface{}, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{
		level:  l.level,
		logger: l.logger,
		fields: merged,
		now:    l.now,
	}
}

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	if level < *l.level {
		return
	}

	timestamp := l.now().Format("2006-01-02 15:04:05")

	all := fields
	if len(l.fields) > 0 {
		all = make([]interface{}, 0, len(l.fields)+len(fields))
		all = append(all, l.fields...)
		all = append(all, fields...)
	}

	l.logger.Printf("[%s] %s: %s%s", timestamp, level.String(), msg, formatFields(all))
}

// formatFields renders pairs as " k1=v1 k2=v2". A trailing key without a
// value is dropped.
func formatFields(fields []interface{}) string {
	if len(fields) < 2 {
		return ""
	}
	parts := make([]string, 0, len(fields)/2)
	for i := 0; i < len(fields)-1; i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", fields[i], fields[i+1]))
	}
	return " " + strings.Join(parts, " ")
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.log(DEBUG, msg, fields...)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...interface{}) {
	l.log(INFO, msg, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.log(WARN, msg, fields...)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...interface{}) {
	l.log(ERROR, msg, fields...)
}

// SetLevel sets the logging level for this logger and all its children
func (l *Logger) SetLevel(level Level) {
	*l.level = level
}
