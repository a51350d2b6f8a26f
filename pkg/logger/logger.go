// ==============================================================================
// STRUCTURED LOGGER - pkg/logger/logger.go
// ==============================================================================

// Package logger writes one JSON object per line to stdout. Every entry
// carries the service name, so logs from the API, the migration runner and
// the ingestion CLI stay distinguishable in a shared stream.
package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Logger is the logging surface handed to services and handlers. fields may
// be nil when an entry has no structured context.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Debug(message string, fields map[string]interface{})
	Fatal(message string, fields map[string]interface{})
}

const (
	levelInfo  = "info"
	levelError = "error"
	levelWarn  = "warn"
	levelDebug = "debug"
	levelFatal = "fatal"
)

type jsonLogger struct {
	service string
	out     *log.Logger
}

// New returns a Logger that tags every entry with serviceName.
func New(serviceName string) Logger {
	return &jsonLogger{
		service: serviceName,
		out:     log.New(os.Stdout, "", 0),
	}
}

func (l *jsonLogger) write(level, message string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     level,
		"service":   l.service,
		"message":   message,
	}
	for k, v := range fields {
		entry[k] = v
	}

	line, _ := json.Marshal(entry)
	l.out.Println(string(line))
}

func (l *jsonLogger) Info(message string, fields map[string]interface{}) {
	l.write(levelInfo, message, fields)
}

func (l *jsonLogger) Error(message string, fields map[string]interface{}) {
	l.write(levelError, message, fields)
}

func (l *jsonLogger) Warn(message string, fields map[string]interface{}) {
	l.write(levelWarn, message, fields)
}

func (l *jsonLogger) Debug(message string, fields map[string]interface{}) {
	l.write(levelDebug, message, fields)
}

// Fatal logs the entry and exits the process.
func (l *jsonLogger) Fatal(message string, fields map[string]interface{}) {
	l.write(levelFatal, message, fields)
	os.Exit(1)
}

// NewNop returns a Logger that discards everything. Used in tests.
func NewNop() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (l *nopLogger) Info(message string, fields map[string]interface{})  {}
func (l *nopLogger) Error(message string, fields map[string]interface{}) {}
func (l *nopLogger) Warn(message string, fields map[string]interface{})  {}
func (l *nopLogger) Debug(message string, fields map[string]interface{}) {}
func (l *nopLogger) Fatal(message string, fields map[string]interface{}) {}
