package extension

import (
	"log/slog"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/plugin"
	"github.com/xraph/doorman/store"
)

// ExtOption configures the Doorman Forge extension.
type ExtOption func(*Extension)

// WithGuard declares a protected resource served by the extension.
func WithGuard(resource string, registry *doorman.Registry, opts ...doorman.Option) ExtOption {
	return func(e *Extension) {
		e.guardDefs = append(e.guardDefs, guardDef{
			resource: resource,
			registry: registry,
			opts:     opts,
		})
	}
}

// WithStore sets the decision-log persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.store = s
	}
}

// WithAuthorizer sets the privilege engine shared by all guards.
func WithAuthorizer(az doorman.Authorizer) ExtOption {
	return func(e *Extension) {
		e.sharedOpts = append(e.sharedOpts, doorman.WithAuthorizer(az))
	}
}

// WithFinder sets the object finder shared by all guards.
func WithFinder(f doorman.Finder) ExtOption {
	return func(e *Extension) {
		e.sharedOpts = append(e.sharedOpts, doorman.WithFinder(f))
	}
}

// WithGuardOptions adds guard-level options applied to every guard.
func WithGuardOptions(opts ...doorman.Option) ExtOption {
	return func(e *Extension) {
		e.sharedOpts = append(e.sharedOpts, opts...)
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithPlugin registers a lifecycle hook plugin on every guard.
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
