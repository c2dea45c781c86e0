// Package logger provides structured, leveled logging for the router.
// Loggers are constructed once at process start and injected into the
// components that need them; there is no package-level singleton.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the severity of a log entry
type Level int

const (
	// DEBUG level for debug information
	DEBUG Level = iota
	// INFO level for informational messages
	INFO
	// WARN level for warning messages
	WARN
	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the log level
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

// ParseLevel parses a string log level
func ParseLevel(levelStr string) (Level, error) {
	switch levelStr {
	case "DEBUG", "debug":
		return DEBUG, nil
	case "INFO", "info":
		return INFO, nil
	case "WARN", "warn", "WARNING", "warning":
		return WARN, nil
	case "ERROR", "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// Entry represents a structured log entry
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Component string                 `json:"component,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger writes leveled, structured log entries to a single output
type Logger struct {
	mu         sync.RWMutex
	level      Level
	output     io.Writer
	fields     map[string]interface{}
	component  string
	jsonFormat bool
}

// New creates a logger with INFO level writing text to stdout
func New() *Logger {
	return &Logger{
		level:  INFO,
		output: os.Stdout,
		fields: make(map[string]interface{}),
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetJSONFormat enables or disables JSON formatting
func (l *Logger) SetJSONFormat(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonFormat = enabled
}

// WithComponent returns a logger tagged with a component name
func (l *Logger) WithComponent(name string) *Logger {
	child := l.clone()
	child.component = name
	return child
}

// WithField returns a logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	child := l.clone()
	child.fields[key] = value
	return child
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	child := l.clone()
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

func (l *Logger) clone() *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := &Logger{
		level:      l.level,
		output:     l.output,
		fields:     make(map[string]interface{}, len(l.fields)+1),
		component:  l.component,
		jsonFormat: l.jsonFormat,
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	return child
}

func (l *Logger) log(level Level, msg string, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	entry := Entry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   msg,
		Fields:    l.fields,
		Component: l.component,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if reqID, ok := l.fields["request_id"]; ok {
		entry.RequestID = fmt.Sprintf("%v", reqID)
	}

	if l.jsonFormat {
		l.writeJSON(entry)
	} else {
		l.writeText(entry)
	}
}

func (l *Logger) writeJSON(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.output, "failed to marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(l.output, string(data))
}

func (l *Logger) writeText(entry Entry) {
	output := fmt.Sprintf("[%s] [%s] ", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level)
	if entry.Component != "" {
		output += fmt.Sprintf("[%s] ", entry.Component)
	}
	if entry.RequestID != "" {
		output += fmt.Sprintf("[%s] ", entry.RequestID)
	}
	output += entry.Message
	if entry.Error != "" {
		output += fmt.Sprintf(" error=%s", entry.Error)
	}
	for k, v := range entry.Fields {
		if k != "request_id" { // already displayed
			output += fmt.Sprintf(" %s=%v", k, v)
		}
	}
	fmt.Fprintln(l.output, output)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.log(DEBUG, msg, nil)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...), nil)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.log(INFO, msg, nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...), nil)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.log(WARN, msg, nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARN, fmt.Sprintf(format, args...), nil)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error) {
	l.log(ERROR, msg, err)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...), nil)
}
