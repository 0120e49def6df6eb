// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with map fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("dispatch")
//	log.Info("error handled", logger.Fields(logger.FieldOutcome, "handled"))
package logger
