package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldProjectUUID is the standardized structured logging key for project identifiers.
	FieldProjectUUID = "project_uuid"
	// FieldPhase is the standardized structured logging key for workflow phase names.
	FieldPhase = "phase"
)

// Error builds the standardized error attribute.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards all output. Components accept nil
// loggers and substitute this, keeping diagnostics strictly opt-in.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WithProject returns a logger tagged with the project identifier.
func WithProject(logger *slog.Logger, projectUUID string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if projectUUID == "" {
		return logger
	}
	return logger.With(slog.String(FieldProjectUUID, projectUUID))
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
