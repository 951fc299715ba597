// Package logging assembles structured slog loggers and formatting helpers used
// across bilisum.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so backend and poller code can
// automatically tag log lines with task IDs, preset keys, and correlation IDs.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
