// Package store defines the aggregate persistence interface. Each subsystem
// (opset, target, grant) defines its own store interface; the composite
// Store composes them with the shared id sequence and lifecycle methods.
// Backends: Postgres, SQLite, Mongo, and Memory.
package store

import (
	"context"
	"errors"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/target"
)

// ErrNotFound is the sentinel wrapped by every backend when a row does not
// exist.
var ErrNotFound = errors.New("provost: not found")

// Store is the aggregate persistence interface. A single backend implements
// all of it.
type Store interface {
	opset.Store
	target.Store
	grant.Store

	// NextID allocates the next value of the shared id sequence used for
	// set, operation, and target rows.
	NextID(ctx context.Context) (int64, error)

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
