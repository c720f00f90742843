// Package extension provides a Forge extension entry point for Doorman.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/api"
	"github.com/xraph/doorman/plugin"
	"github.com/xraph/doorman/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "doorman"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Request-time access control decision layer"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// guardDef is one declared protected resource.
type guardDef struct {
	resource string
	registry *doorman.Registry
	opts     []doorman.Option
}

// Extension adapts Doorman as a Forge extension. Each declared resource gets
// its own guard; all guards share the extension's store, authorizer, finder,
// and plugins.
type Extension struct {
	config     Config
	guardDefs  []guardDef
	guards     map[string]*doorman.Guard
	store      store.Store
	apiHandler *api.API
	logger     *slog.Logger
	sharedOpts []doorman.Option
	plugins    []plugin.Plugin
}

// New creates a Doorman Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{guards: make(map[string]*doorman.Guard)}
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

// Guard returns the guard mounted for a resource, or nil.
func (e *Extension) Guard(resource string) *doorman.Guard { return e.guards[resource] }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It builds the guards, registers
// them in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the extension in the DI container so handlers can resolve
	// guards by resource name.
	if err := vessel.Provide(fapp.Container(), func() (*Extension, error) {
		return e, nil
	}); err != nil {
		return fmt.Errorf("doorman: register extension in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Try to resolve store from DI container, fall back to option-provided store.
	if e.store == nil {
		if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
			e.store = s
		}
	}

	for _, def := range e.guardDefs {
		opts := make([]doorman.Option, 0, len(e.sharedOpts)+len(def.opts)+len(e.plugins)+3)
		opts = append(opts, doorman.WithLogger(logger))
		if e.config.LoadParam != "" {
			cfg := doorman.DefaultConfig()
			cfg.LoadParam = e.config.LoadParam
			opts = append(opts, doorman.WithConfig(cfg))
		}
		if e.store != nil {
			opts = append(opts, doorman.WithRecorder(e.store))
		}
		opts = append(opts, e.sharedOpts...)
		opts = append(opts, def.opts...)
		for _, x := range e.plugins {
			opts = append(opts, doorman.WithPlugin(x))
		}

		guard, err := doorman.NewGuard(def.registry, opts...)
		if err != nil {
			return fmt.Errorf("doorman: create guard for %s: %w", def.resource, err)
		}
		e.guards[def.resource] = guard
	}

	// Create API handler.
	e.apiHandler = api.New(e.store, fapp.Router())
	for resource, guard := range e.guards {
		e.apiHandler.Mount(resource, guard)
	}

	// Register HTTP routes unless disabled.
	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("doorman: register routes: %w", err)
		}
	}

	return nil
}

// Start runs store migrations unless disabled.
func (e *Extension) Start(ctx context.Context) error {
	if len(e.guards) == 0 && len(e.guardDefs) > 0 {
		return errors.New("doorman: extension not initialized")
	}

	if !e.config.DisableMigrate && e.store != nil {
		if err := e.store.Migrate(ctx); err != nil {
			return fmt.Errorf("doorman: migration failed: %w", err)
		}
	}

	return nil
}

// Stop gracefully shuts down the extension, notifying plugins.
func (e *Extension) Stop(ctx context.Context) error {
	for _, guard := range e.guards {
		if p := guard.Plugins(); p != nil {
			p.EmitShutdown(ctx)
		}
	}
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all doorman API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
