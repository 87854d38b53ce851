// Package logging constructs the slog loggers used across Canticle.
//
// Loggers write to stdout and, when a log directory is configured, to a
// canticle.log file inside it. Console output uses a compact text handler;
// the json format emits one object per line for ingestion.
package logging
