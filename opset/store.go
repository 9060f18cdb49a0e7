package opset

import "context"

// Store defines persistence operations for operation codes, operation sets,
// and the per-operation attribute whitelists.
type Store interface {
	// SaveSet upserts a set: INSERT when the record was never loaded from
	// storage, UPDATE otherwise. Returns true when a new row was created.
	// A record with no pending change is left untouched.
	SaveSet(ctx context.Context, s *Set) (bool, error)

	// GetSet retrieves a set by id.
	GetSet(ctx context.Context, setID int64) (*Set, error)

	// GetSetByName retrieves a set by its unique name.
	GetSetByName(ctx context.Context, name string) (*Set, error)

	// DeleteSet removes a set and its operations. Grant rows referencing the
	// set are NOT cascaded; they become orphans until the integrity sweep.
	DeleteSet(ctx context.Context, setID int64) error

	// ListSets returns all sets.
	ListSets(ctx context.Context) ([]*Set, error)

	// AddOperation adds an operation code to a set and returns the new
	// operation id.
	AddOperation(ctx context.Context, setID int64, code Code) (int64, error)

	// RemoveOperation removes an operation code from a set.
	RemoveOperation(ctx context.Context, setID int64, code Code) error

	// ListOperations returns the operations of a set.
	ListOperations(ctx context.Context, setID int64) ([]Operation, error)

	// ListOperationsByCode returns every operation row carrying the code,
	// across all sets. This is the engine's "which sets contain op" lookup.
	ListOperationsByCode(ctx context.Context, code Code) ([]Operation, error)

	// AddOperationAttr appends an attribute to an operation's whitelist.
	AddOperationAttr(ctx context.Context, opID int64, attr string) error

	// RemoveOperationAttr removes an attribute from an operation's whitelist.
	RemoveOperationAttr(ctx context.Context, opID int64, attr string) error

	// ListOperationAttrs returns an operation's attribute whitelist.
	ListOperationAttrs(ctx context.Context, opID int64) ([]string, error)

	// CreateCode persists an operation-code descriptor (import tooling).
	CreateCode(ctx context.Context, c *CodeInfo) error

	// GetCodeByName retrieves a code descriptor by symbolic name.
	GetCodeByName(ctx context.Context, name string) (*CodeInfo, error)

	// ListCodes returns all code descriptors.
	ListCodes(ctx context.Context) ([]*CodeInfo, error)
}
