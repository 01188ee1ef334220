// Package common defines the error kinds and shared constants used across
// the gistpen entity store. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrInvalidArgument reports malformed caller input, e.g. a bad "with" shape.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound reports a missing record, term or entity for the given id.
	ErrNotFound = errors.New("not found")

	// ErrMisconfigured reports an entity kind without a recognized storage backing.
	ErrMisconfigured = errors.New("misconfigured model")

	// ErrStorageFailure wraps errors reported by the storage adapter.
	ErrStorageFailure = errors.New("storage failure")

	// ErrUnsupported reports operations that are intentionally not implemented.
	ErrUnsupported = errors.New("not implemented")
)
