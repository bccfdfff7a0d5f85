package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Option configures a JSONLogger
type Option func(*JSONLogger)

// WithClock replaces the wall clock used for the time field
func WithClock(c Clock) Option {
	return func(l *JSONLogger) { l.clock = c }
}

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(writer io.Writer, level Level, opts ...Option) *JSONLogger {
	l := &JSONLogger{
		writer: writer,
		level:  &levelVar{level: level},
		clock:  time.Now,
		mu:     &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewDefaultLogger creates a logger that writes to stderr at INFO level.
// Stdout is left to the CLI for results.
func NewDefaultLogger() *JSONLogger {
	return NewJSONLogger(os.Stderr, InfoLevel)
}

func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	if level < l.GetLevel() {
		return
	}

	fieldMap := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		fieldMap[f.Key] = f.Value
	}

	entry := LogEntry{
		Time:    l.clock().UTC().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if len(fieldMap) > 0 {
		entry.Fields = fieldMap
	}

	data, err := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] failed to marshal log entry %q: %v\n", msg, err)
		return
	}
	data = append(data, '\n')
	l.writer.Write(data)
}

// Debug logs a debug-level message
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields...)
}

// Info logs an info-level message
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields...)
}

// Warn logs a warning-level message
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields...)
}

// Error logs an error-level message
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields...)
}

// With creates a child logger with the given fields pre-set. The child
// shares the parent's level so SetLevel on either affects both.
func (l *JSONLogger) With(fields ...Field) Logger {
	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &JSONLogger{
		writer: l.writer,
		level:  l.level,
		fields: newFields,
		clock:  l.clock,
		mu:     l.mu,
	}
}

// SetLevel sets the minimum log level
func (l *JSONLogger) SetLevel(level Level) {
	l.level.mu.Lock()
	defer l.level.mu.Unlock()
	l.level.level = level
}

// GetLevel returns the current log level
func (l *JSONLogger) GetLevel() Level {
	l.level.mu.RLock()
	defer l.level.mu.RUnlock()
	return l.level.level
}

// Global default logger
var (
	defaultLogger Logger
	defaultMu     sync.RWMutex
	once          sync.Once
)

// DefaultLogger returns the global default logger. LOG_LEVEL selects the level.
func DefaultLogger() Logger {
	once.Do(func() {
		level := InfoLevel
		if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
			level = ParseLevel(levelStr)
		}
		defaultMu.Lock()
		if defaultLogger == nil {
			defaultLogger = NewJSONLogger(os.Stderr, level)
		}
		defaultMu.Unlock()
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger Logger) {
	once.Do(func() {})
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// TimedOperation logs a message with its elapsed time when it ends
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// End logs the operation at debug level with its duration
func (t *TimedOperation) End(extra ...Field) {
	fields := append(append([]Field{}, t.fields...), extra...)
	t.logger.Debug(t.msg, append(fields, Latency(time.Since(t.start)))...)
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) {
	fields := append([]Field{}, t.fields...)
	t.logger.Error(t.msg, append(fields, Latency(time.Since(t.start)), Error(err))...)
}
