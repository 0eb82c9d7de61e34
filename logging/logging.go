// Package logging provides the structured logger used across the server.
//
// Log output goes to a writer chosen by the caller, normally stderr: stdout
// carries protocol messages and must not be written to.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}

// Options configures a charm-backed logger.
type Options struct {
	Level      string // debug, info, warn or error
	Format     string // text, json or logfmt
	Timestamps bool
	Prefix     string
}

// CharmLogger implements Logger on top of charmbracelet/log.
type CharmLogger struct {
	logger *log.Logger
}

// New creates a logger that writes to w.
func New(w io.Writer, opts Options) (*CharmLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.Timestamps,
		Prefix:          opts.Prefix,
	})
	return &CharmLogger{logger: logger}, nil
}

// SetLevel changes the minimum level at runtime.
func (l *CharmLogger) SetLevel(level string) error {
	lv, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.logger.SetLevel(lv)
	return nil
}

// With returns a logger that adds fields to every entry.
func (l *CharmLogger) With(fields ...Field) *CharmLogger {
	return &CharmLogger{logger: l.logger.With(keyvals(fields)...)}
}

func (l *CharmLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, keyvals(fields)...) }
func (l *CharmLogger) Info(msg string, fields ...Field)  { l.logger.Info(msg, keyvals(fields)...) }
func (l *CharmLogger) Warn(msg string, fields ...Field)  { l.logger.Warn(msg, keyvals(fields)...) }
func (l *CharmLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, keyvals(fields)...) }

func keyvals(fields []Field) []any {
	if len(fields) == 0 {
		return nil
	}
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// ParseFormat parses a formatter name. An empty name means text.
func ParseFormat(format string) (log.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format %q", format)
	}
}
