// Package logging builds slog loggers whose records automatically carry
// the active correlation ID and trace identifiers, making every log
// line joinable with its trace.
package logging
