package grant

import "context"

// Store defines persistence operations for grant rows. These are pure data
// access; all decision logic lives in the engine.
type Store interface {
	// CreateGrant inserts a grant row. Returns ErrDuplicate when the exact
	// (entity, set, target) row already exists.
	CreateGrant(ctx context.Context, g *Grant) error

	// DeleteGrant removes the matching row. Deleting a grant that does not
	// exist is a no-op, not an error.
	DeleteGrant(ctx context.Context, g *Grant) error

	// ListGrants returns grant rows matching the filter.
	ListGrants(ctx context.Context, filter *ListFilter) ([]*Grant, error)

	// ListGrantsByEntities returns all grants held by any of the entities.
	ListGrantsByEntities(ctx context.Context, entityIDs []int64) ([]*Grant, error)

	// ListGrantsByTargets returns all grants on any of the targets — "who
	// owns these targets".
	ListGrantsByTargets(ctx context.Context, targetIDs []int64) ([]*Grant, error)

	// CountOrphanGrants counts grant rows whose operation set or operation
	// target row no longer exists.
	CountOrphanGrants(ctx context.Context) (int64, error)

	// PruneOrphanGrants deletes orphaned grant rows and returns how many
	// were removed.
	PruneOrphanGrants(ctx context.Context) (int64, error)
}
