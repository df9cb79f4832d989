// Package logging constructs the slog loggers used across the pipeline and
// provides typed attribute helpers so components log in a consistent shape.
package logging
