// Package logging assembles structured slog loggers and formatting helpers used
// across the Borsch client.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request and controller code
// can automatically tag log lines with job IDs, session IDs, and correlation
// IDs. The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
