// Package errors provides error handling for Elbert.
//
// This package re-exports github.com/cockroachdb/errors so every package
// gets stack traces, wrapping and user-facing hints from one import:
//
//	if err := loader.Load(ctx); err != nil {
//	    return errors.Wrap(err, "failed to load plugins")
//	}
//
//	return errors.WithHint(err, "check the manifest JSON syntax")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors shared across the launcher.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrRebuildInProgress is advisory: another rebuild is already running.
	// Callers may simply wait for it instead of starting their own.
	ErrRebuildInProgress = New("index rebuild already in progress")

	// ErrInvalidManifest indicates a plugin manifest could not be parsed
	ErrInvalidManifest = New("invalid plugin manifest")

	// ErrUnsupportedAction indicates an action kind the executor cannot run
	ErrUnsupportedAction = New("unsupported action")

	// ErrActionFailed indicates an action was started but did not succeed
	ErrActionFailed = New("action failed")

	// ErrNotFound indicates the requested item does not exist
	ErrNotFound = New("not found")
)

// IsRebuildInProgress checks if an error is or wraps ErrRebuildInProgress
func IsRebuildInProgress(err error) bool {
	return err != nil && Is(err, ErrRebuildInProgress)
}

// IsInvalidManifest checks if an error is or wraps ErrInvalidManifest
func IsInvalidManifest(err error) bool {
	return err != nil && Is(err, ErrInvalidManifest)
}

// WrapInvalidManifest marks err as an invalid-manifest error with context.
// The original message is kept; errors.Is(result, ErrInvalidManifest) holds.
func WrapInvalidManifest(err error, context string) error {
	return Wrap(Mark(err, ErrInvalidManifest), context)
}

// NewInvalidManifestError creates an invalid-manifest error with a formatted message
func NewInvalidManifestError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidManifest)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrNotFound)
}
