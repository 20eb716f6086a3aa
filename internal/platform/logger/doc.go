// Package logger provides structured logging for the application.
//
// It builds a log/slog logger from config.LogConfig: coloured console output
// through tint for development profiles, JSON for production, and an
// optional JSON file copy. It also carries request-scoped loggers in
// context.Context.
package logger
