// Package logger provides the structured logging interface used across flipdl.
//
// It wraps zerolog with a small Logger interface:
//   - colored console output for interactive runs
//   - optional JSON file output rotated by lumberjack
//   - field-carrying child loggers (WithField, WithFields, WithError)
//   - a global logger for command wiring
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.WithField("page", 12).Info("Page retrieved")
//
// Tests substitute NewTestLogger, which records every message together with
// the fields and error attached to it.
package logger
