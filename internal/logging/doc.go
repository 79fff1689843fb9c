// Package logging assembles the structured slog loggers used across darkroom
// components.
//
// It owns the console and JSON handlers, level parsing, and the standard
// field keys, and provides a no-op logger so components can treat diagnostics
// as strictly optional. Prefer these constructors over hand-rolled slog setup
// so every component emits data with the same shape.
package logging
