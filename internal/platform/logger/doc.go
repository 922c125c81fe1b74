// Package logger configures the application's structured JSON logger.
//
// Logs go to stdout and, when a log file is configured, also to a
// size-rotated file managed by lumberjack. Request-scoped loggers travel in
// the context; FromContextOrDefault retrieves them.
package logger
