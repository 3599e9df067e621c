package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownTransform indicates a normalizer name that is not
	// registered. Pipeline construction fails early on this.
	ErrUnknownTransform = errors.New("unknown normalizer transform")

	// ErrUnknownAnalyzer indicates an analyzer name that is not
	// registered. Pipeline construction fails early on this.
	ErrUnknownAnalyzer = errors.New("unknown analyzer")

	// ErrInvalidPattern indicates a malformed regex in configuration.
	// This is a startup-time error, never a per-document failure.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrIndexClosed indicates the index store has been closed.
	ErrIndexClosed = errors.New("index store closed")

	// ErrRebuildInProgress indicates a full rebuild is already running.
	ErrRebuildInProgress = errors.New("rebuild in progress")
)
