package doorman

import (
	"log/slog"

	"github.com/xraph/doorman/decisionlog"
	"github.com/xraph/doorman/plugin"
)

// Option is a functional option for the Guard.
type Option func(*Guard)

// WithAuthorizer sets the privilege engine rules delegate to.
func WithAuthorizer(az Authorizer) Option { return func(g *Guard) { g.authorizer = az } }

// WithFinder sets the object finder used by the default load strategy.
func WithFinder(f Finder) Option { return func(g *Guard) { g.finder = f } }

// WithResolver replaces the built-in object resolver.
func WithResolver(r ObjectResolver) Option { return func(g *Guard) { g.resolver = r } }

// WithCache sets the decision cache.
func WithCache(c Cache) Option { return func(g *Guard) { g.cache = c } }

// WithRecorder sets the decision-log store decisions are written to.
func WithRecorder(s decisionlog.Store) Option { return func(g *Guard) { g.recorder = s } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(g *Guard) { g.logger = l } }

// WithConfig sets the guard configuration.
func WithConfig(c Config) Option { return func(g *Guard) { g.config = c } }

// WithPlugin registers a plugin with the guard.
func WithPlugin(x plugin.Plugin) Option {
	return func(g *Guard) {
		if g.plugins == nil {
			g.plugins = plugin.NewRegistry(g.logger)
		}
		g.plugins.Register(x)
	}
}
