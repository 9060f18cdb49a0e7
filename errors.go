package provost

import (
	"errors"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/store"
)

var (
	// ErrPermissionDenied is returned by Enforce when an evaluation denies
	// the request. The wrapped message carries the human-readable reason.
	ErrPermissionDenied = errors.New("provost: permission denied")

	// ErrNotFound is the sentinel for missing entities. Directory and store
	// implementations wrap it; the engine propagates it unchanged.
	ErrNotFound = store.ErrNotFound

	// ErrDuplicateGrant is returned when an identical grant row exists.
	ErrDuplicateGrant = grant.ErrDuplicate

	// ErrUnknownOperation is returned when an operation code or name is not
	// present in the loaded code registry.
	ErrUnknownOperation = errors.New("provost: unknown operation code")

	// ErrUnknownTargetType is returned for a target type outside the closed
	// enumeration.
	ErrUnknownTargetType = errors.New("provost: unknown target type")

	// ErrDirectoryRequired is returned by NewEngine when no directory
	// collaborator is configured.
	ErrDirectoryRequired = errors.New("provost: directory is required")
)
