// Package extension provides a Forge extension entry point for Provost.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/provost"
	"github.com/xraph/provost/api"
	"github.com/xraph/provost/plugin"
	"github.com/xraph/provost/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "provost"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Operation-set/target authorization engine for identity administration"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Provost as a Forge extension.
type Extension struct {
	config      Config
	eng         *provost.Engine
	apiHandler  *api.API
	logger      *slog.Logger
	provostOpts []provost.Option
	plugins     []plugin.Plugin
}

// New creates a Provost Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying Provost engine.
func (e *Extension) Engine() *provost.Engine { return e.eng }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine in the DI container.
	if err := vessel.Provide(fapp.Container(), func() (*provost.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("provost: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Build provost options.
	opts := make([]provost.Option, 0, len(e.provostOpts)+len(e.plugins)+3)
	opts = append(opts, provost.WithLogger(logger))

	// Try to resolve collaborators from the DI container; option-provided
	// values take precedence.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, provost.WithStore(s))
	}
	if d, err := forge.Inject[provost.Directory](fapp.Container()); err == nil {
		opts = append(opts, provost.WithDirectory(d))
	}
	if e.config.SuperuserGroup != "" {
		cfg := provost.DefaultConfig()
		cfg.SuperuserGroup = e.config.SuperuserGroup
		opts = append(opts, provost.WithConfig(cfg))
	}

	// Append user-provided options (may override store and directory).
	opts = append(opts, e.provostOpts...)

	// Register extension hooks.
	for _, x := range e.plugins {
		opts = append(opts, provost.WithPlugin(x))
	}

	eng, err := provost.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("provost: create engine: %w", err)
	}
	e.eng = eng

	// Create API handler.
	e.apiHandler = api.New(eng, fapp.Router())

	// Register HTTP routes unless disabled.
	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("provost: register routes: %w", err)
		}
	}

	return nil
}

// Start runs migrations if enabled and loads the operation-code registry.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("provost: extension not initialized")
	}

	// Run migrations unless disabled.
	if !e.config.DisableMigrate {
		if s := e.eng.Store(); s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("provost: migration failed: %w", err)
			}
		}
	}

	return e.eng.LoadCodes(ctx)
}

// Stop gracefully shuts down the provost engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	e.eng.Close(ctx)
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("provost: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("provost: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all provost API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
