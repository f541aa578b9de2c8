// Package logging configures zerolog for wardboard.
//
// It builds loggers from a small Config (level, format, output), derives
// per-component child loggers, and carries a ULID trace ID through
// context.Context so every log line and outgoing API request of a single
// command invocation can be correlated.
//
// The interactive dashboard owns the terminal, so when a log file is
// configured all output goes there instead of stderr.
package logging
