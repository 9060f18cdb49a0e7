package extension

import (
	"log/slog"

	"github.com/xraph/provost"
	"github.com/xraph/provost/plugin"
	"github.com/xraph/provost/store"
)

// ExtOption configures the Provost Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.provostOpts = append(e.provostOpts, provost.WithStore(s))
	}
}

// WithDirectory sets the identity directory collaborator.
func WithDirectory(d provost.Directory) ExtOption {
	return func(e *Extension) {
		e.provostOpts = append(e.provostOpts, provost.WithDirectory(d))
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...provost.Option) ExtOption {
	return func(e *Extension) {
		e.provostOpts = append(e.provostOpts, opts...)
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
