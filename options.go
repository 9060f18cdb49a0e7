package provost

import (
	"log/slog"
	"time"

	"github.com/xraph/provost/plugin"
	"github.com/xraph/provost/store"
)

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the persistence backend. Required.
func WithStore(s store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithDirectory sets the identity directory collaborator. Required.
func WithDirectory(d Directory) Option {
	return func(e *Engine) {
		e.dir = d
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMemberCache replaces the default TTL member cache.
func WithMemberCache(c MemberCache) Option {
	return func(e *Engine) {
		e.members = c
	}
}

// WithAnyPermCache replaces the default LRU any-permission cache.
func WithAnyPermCache(c AnyPermCache) Option {
	return func(e *Engine) {
		e.anyPerm = c
	}
}

// WithClock overrides the time source used by the default caches. Tests use
// this to step through TTL expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithPlugin registers a lifecycle plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		e.pluginList = append(e.pluginList, p)
	}
}
