// Package logger provides structured logging for fogsched components
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("scheduler")
//	log.Info("run finished", logger.RunFields(runID, "ga", "montage-50"))
package logger
