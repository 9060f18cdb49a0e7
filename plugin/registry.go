package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/target"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeEvaluateEntry struct {
	name string
	hook BeforeEvaluate
}
type afterEvaluateEntry struct {
	name string
	hook AfterEvaluate
}
type grantedEntry struct {
	name string
	hook Granted
}
type revokedEntry struct {
	name string
	hook Revoked
}
type setSavedEntry struct {
	name string
	hook SetSaved
}
type setDeletedEntry struct {
	name string
	hook SetDeleted
}
type targetSavedEntry struct {
	name string
	hook TargetSaved
}
type targetDeletedEntry struct {
	name string
	hook TargetDeleted
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeEvaluate []beforeEvaluateEntry
	afterEvaluate  []afterEvaluateEntry
	granted        []grantedEntry
	revoked        []revokedEntry
	setSaved       []setSavedEntry
	setDeleted     []setDeletedEntry
	targetSaved    []targetSavedEntry
	targetDeleted  []targetDeletedEntry
	shutdown       []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeEvaluate); ok {
		r.beforeEvaluate = append(r.beforeEvaluate, beforeEvaluateEntry{name, h})
	}
	if h, ok := p.(AfterEvaluate); ok {
		r.afterEvaluate = append(r.afterEvaluate, afterEvaluateEntry{name, h})
	}
	if h, ok := p.(Granted); ok {
		r.granted = append(r.granted, grantedEntry{name, h})
	}
	if h, ok := p.(Revoked); ok {
		r.revoked = append(r.revoked, revokedEntry{name, h})
	}
	if h, ok := p.(SetSaved); ok {
		r.setSaved = append(r.setSaved, setSavedEntry{name, h})
	}
	if h, ok := p.(SetDeleted); ok {
		r.setDeleted = append(r.setDeleted, setDeletedEntry{name, h})
	}
	if h, ok := p.(TargetSaved); ok {
		r.targetSaved = append(r.targetSaved, targetSavedEntry{name, h})
	}
	if h, ok := p.(TargetDeleted); ok {
		r.targetDeleted = append(r.targetDeleted, targetDeletedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Evaluation event emitters
// ──────────────────────────────────────────────────

// EmitBeforeEvaluate notifies all plugins that implement BeforeEvaluate.
func (r *Registry) EmitBeforeEvaluate(ctx context.Context, req any) {
	for _, e := range r.beforeEvaluate {
		if err := e.hook.OnBeforeEvaluate(ctx, req); err != nil {
			r.logHookError("OnBeforeEvaluate", e.name, err)
		}
	}
}

// EmitAfterEvaluate notifies all plugins that implement AfterEvaluate.
func (r *Registry) EmitAfterEvaluate(ctx context.Context, req, result any) {
	for _, e := range r.afterEvaluate {
		if err := e.hook.OnAfterEvaluate(ctx, req, result); err != nil {
			r.logHookError("OnAfterEvaluate", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Grant event emitters
// ──────────────────────────────────────────────────

// EmitGranted notifies all plugins that implement Granted.
func (r *Registry) EmitGranted(ctx context.Context, g *grant.Grant) {
	for _, e := range r.granted {
		if err := e.hook.OnGranted(ctx, g); err != nil {
			r.logHookError("OnGranted", e.name, err)
		}
	}
}

// EmitRevoked notifies all plugins that implement Revoked.
func (r *Registry) EmitRevoked(ctx context.Context, g *grant.Grant) {
	for _, e := range r.revoked {
		if err := e.hook.OnRevoked(ctx, g); err != nil {
			r.logHookError("OnRevoked", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Operation-set event emitters
// ──────────────────────────────────────────────────

// EmitSetSaved notifies all plugins that implement SetSaved.
func (r *Registry) EmitSetSaved(ctx context.Context, s *opset.Set) {
	for _, e := range r.setSaved {
		if err := e.hook.OnSetSaved(ctx, s); err != nil {
			r.logHookError("OnSetSaved", e.name, err)
		}
	}
}

// EmitSetDeleted notifies all plugins that implement SetDeleted.
func (r *Registry) EmitSetDeleted(ctx context.Context, setID int64) {
	for _, e := range r.setDeleted {
		if err := e.hook.OnSetDeleted(ctx, setID); err != nil {
			r.logHookError("OnSetDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Target event emitters
// ──────────────────────────────────────────────────

// EmitTargetSaved notifies all plugins that implement TargetSaved.
func (r *Registry) EmitTargetSaved(ctx context.Context, t *target.Target) {
	for _, e := range r.targetSaved {
		if err := e.hook.OnTargetSaved(ctx, t); err != nil {
			r.logHookError("OnTargetSaved", e.name, err)
		}
	}
}

// EmitTargetDeleted notifies all plugins that implement TargetDeleted.
func (r *Registry) EmitTargetDeleted(ctx context.Context, targetID int64) {
	for _, e := range r.targetDeleted {
		if err := e.hook.OnTargetDeleted(ctx, targetID); err != nil {
			r.logHookError("OnTargetDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
