package logging

import (
	"io"
	"strings"
	"sync"
	"time"
)

// Level orders log output by severity
type Level int

const (
	// DebugLevel carries per-meeting and per-decision detail
	DebugLevel Level = iota
	// InfoLevel covers run lifecycle and leader changes
	InfoLevel
	// WarnLevel marks recoverable anomalies such as an agent stalling at a dead end
	WarnLevel
	// ErrorLevel marks failures that abort a run
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel reads a level name in any case; "warning" is accepted for WARN.
// Anything unrecognised is InfoLevel.
func ParseLevel(s string) Level {
	s = strings.ToUpper(s)
	if s == "WARNING" {
		return WarnLevel
	}
	for i, name := range levelNames {
		if s == name {
			return Level(i)
		}
	}
	return InfoLevel
}

// Field is one structured key/value attached to a log line
type Field struct {
	Key   string
	Value any
}

// Logger is implemented by JSONLogger and NopLogger. Simulation, sweep and
// transport code take a Logger and never write to stderr themselves.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child that prepends fields to every line
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// Clock supplies timestamps. Replays use a fixed clock so logs are stable.
type Clock func() time.Time

// JSONLogger writes one JSON object per line.
// Children created by With share the parent's level and writer lock.
type JSONLogger struct {
	writer io.Writer
	level  *levelVar
	fields []Field
	clock  Clock
	mu     *sync.Mutex
}

type levelVar struct {
	mu    sync.RWMutex
	level Level
}

// LogEntry is the shape of one output line
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything. It is the simulation default.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
func (NopLogger) SetLevel(Level)         {}
func (NopLogger) GetLevel() Level        { return ErrorLevel }

// NewNopLogger returns a NopLogger as a Logger
func NewNopLogger() Logger {
	return NopLogger{}
}
