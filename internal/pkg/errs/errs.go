// Package errs defines the typed failure taxonomy shared by all services.
// Handlers translate these to transport responses; services never retry.
package errs

import "errors"

var (
	// ErrNotFound means a slug or id has no live, non-deleted match.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied means the actor is authenticated but is neither
	// owner nor admin for the attempted mutation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict means a unique-field collision or a delete blocked by
	// live references.
	ErrConflict = errors.New("conflict")
)
