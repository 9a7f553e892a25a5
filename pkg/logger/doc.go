// Package logger provides structured logging for gimgdl.
//
// It wraps zerolog behind a small Logger interface with support for:
//   - Leveled output (Debug, Info, Warn, Error)
//   - Structured fields and attached errors
//   - Human-readable console output
//   - Size-rotated JSON log files via lumberjack
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/gimgdl.log",
//	}
//	if err := logger.Initialize(cfg, logger.Options{}); err != nil {
//	    return err
//	}
//
//	logger.Info("Run started")
//	logger.WithField("query", "hedgehog").Info("Searching")
//	logger.WithError(err).Error("Search failed")
//
// Tests can use NewNopLogger to discard output or NewTestLogger to assert on
// the messages a component logs.
package logger
