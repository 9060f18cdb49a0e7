// Package plugin defines the plugin system for provost.
// Plugins are notified of lifecycle events (evaluation performed, grant
// created, operation set deleted, etc.) and can react — logging, metrics,
// audit trails.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/target"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Evaluation lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeEvaluate is called before an authorization evaluation runs.
// The req parameter is *provost.CheckRequest (passed as any to avoid an
// import cycle).
type BeforeEvaluate interface {
	OnBeforeEvaluate(ctx context.Context, req any) error
}

// AfterEvaluate is called after an authorization evaluation completes.
// The req parameter is *provost.CheckRequest; result is *provost.CheckResult.
type AfterEvaluate interface {
	OnAfterEvaluate(ctx context.Context, req, result any) error
}

// ──────────────────────────────────────────────────
// Grant lifecycle hooks
// ──────────────────────────────────────────────────

// Granted is called after a grant is created.
type Granted interface {
	OnGranted(ctx context.Context, g *grant.Grant) error
}

// Revoked is called after a grant is revoked.
type Revoked interface {
	OnRevoked(ctx context.Context, g *grant.Grant) error
}

// ──────────────────────────────────────────────────
// Operation-set lifecycle hooks
// ──────────────────────────────────────────────────

// SetSaved is called after an operation set is created or updated.
type SetSaved interface {
	OnSetSaved(ctx context.Context, s *opset.Set) error
}

// SetDeleted is called after an operation set is deleted.
type SetDeleted interface {
	OnSetDeleted(ctx context.Context, setID int64) error
}

// ──────────────────────────────────────────────────
// Target lifecycle hooks
// ──────────────────────────────────────────────────

// TargetSaved is called after an operation target is created or updated.
type TargetSaved interface {
	OnTargetSaved(ctx context.Context, t *target.Target) error
}

// TargetDeleted is called after an operation target is deleted.
type TargetDeleted interface {
	OnTargetDeleted(ctx context.Context, targetID int64) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
