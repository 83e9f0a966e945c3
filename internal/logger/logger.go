package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// ParseLevel maps a config string to a log level. Unknown values fall back to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Stderr creates a logger writing to stderr at the named level
func Stderr(level string) *Logger {
	return NewWithLevel(os.Stderr, ParseLevel(level))
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// Component returns a child logger tagged with a component name
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.With("component", name)}
}

// UnrecognizedElement logs an element the serializer passed through untouched
func (l *Logger) UnrecognizedElement(tag string, children int) {
	l.Debug("unrecognized element",
		"tag", tag,
		"children", children)
}

// TableRowSkipped logs a table row dropped for a column mismatch
func (l *Logger) TableRowSkipped(row, want, got int) {
	l.Warn("table row skipped",
		"row", row,
		"columns", want,
		"cells", got)
}

// MathSourceMissing logs a math expression rebuilt from its rendered glyphs
func (l *Logger) MathSourceMissing(rendered, reconstructed string) {
	l.Debug("math source missing",
		"rendered", rendered,
		"reconstructed", reconstructed)
}

// DepthLimitReached logs a subtree flattened by the nesting guard
func (l *Logger) DepthLimitReached(tag string, depth int) {
	l.Warn("nesting depth limit reached",
		"tag", tag,
		"depth", depth)
}

// PlatformDetected logs which adapter handles a page
func (l *Logger) PlatformDetected(name, source, reason string) {
	l.Debug("platform detected",
		"platform", name,
		"source", source,
		"reason", reason)
}

// MessageExtracted logs a serialized message
func (l *Logger) MessageExtracted(index int, role string, items int) {
	l.Debug("message extracted",
		"index", index,
		"role", role,
		"items", items)
}

// ExportStored logs an archived export
func (l *Logger) ExportStored(id, source string, messages int) {
	l.Info("export stored",
		"id", id,
		"source", source,
		"messages", messages)
}
