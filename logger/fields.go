package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across Elbert.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldPlugin = "plugin"

	// Operations
	FieldPath   = "path"
	FieldQuery  = "query"
	FieldAction = "action"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount   = "count"
	FieldDropped = "dropped"

	// Index
	FieldApps       = "apps"
	FieldCommands   = "commands"
	FieldGeneration = "generation"

	// Files and paths
	FieldFile = "file"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Loader struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewLoader() *Loader {
//	    return &Loader{
//	        logger: logger.ComponentLogger("manifest"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
