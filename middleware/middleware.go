// Package middleware provides HTTP authorization middleware for Doorman.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
)

// Option configures the Filter middleware.
type Option func(*filterConfig)

type filterConfig struct {
	params   []string
	loaders  map[string]doorman.Loader
	denied   func(forge.Context, *doorman.Decision) error
	clientIP func(forge.Context) string
}

// WithParams names the route parameters copied onto the execution context.
// Defaults to just "id".
func WithParams(names ...string) Option {
	return func(c *filterConfig) { c.params = names }
}

// WithLoader registers a named object loader on every execution context the
// middleware builds.
func WithLoader(name string, fn doorman.Loader) Option {
	return func(c *filterConfig) {
		if c.loaders == nil {
			c.loaders = make(map[string]doorman.Loader)
		}
		c.loaders[name] = fn
	}
}

// WithDeniedHandler replaces the default 403 response.
func WithDeniedHandler(fn func(forge.Context, *doorman.Decision) error) Option {
	return func(c *filterConfig) { c.denied = fn }
}

// WithClientIP supplies the client address recorded with each decision.
// The extracted value is set on the execution context under
// doorman.ParamRemoteIP; hosts typically read it from the request or a
// trusted proxy header.
func WithClientIP(fn func(forge.Context) string) Option {
	return func(c *filterConfig) { c.clientIP = fn }
}

// Filter enforces the guard's decision for the given action before the
// handler runs. It resolves the identity from the request context
// (Authsome user > anonymous) and copies route parameters onto the
// execution context for object loading.
func Filter(guard *doorman.Guard, action string, opts ...Option) forge.Middleware {
	cfg := &filterConfig{params: []string{"id"}}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			identity := resolveIdentity(ctx)

			execOpts := make([]doorman.ExecOption, 0, len(cfg.params)+len(cfg.loaders))
			for _, name := range cfg.params {
				if v := ctx.Param(name); v != "" {
					execOpts = append(execOpts, doorman.WithParam(name, v))
				}
			}
			for name, fn := range cfg.loaders {
				execOpts = append(execOpts, doorman.WithLoader(name, fn))
			}
			if cfg.clientIP != nil {
				if ip := cfg.clientIP(ctx); ip != "" {
					execOpts = append(execOpts, doorman.WithParam(doorman.ParamRemoteIP, ip))
				}
			}

			ec := doorman.NewExecContext(identity, guard.Registry().Resource(), action, execOpts...)
			decision := guard.Decide(ctx.Context(), action, ec)
			if !decision.Allowed {
				if cfg.denied != nil {
					return cfg.denied(ctx, decision)
				}
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// resolveIdentity extracts the identity from context.
// Priority: Forge user ID (from Authsome) > anonymous.
func resolveIdentity(ctx forge.Context) doorman.Identity {
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return doorman.Identity{Kind: doorman.IdentityUser, ID: userID}
	}
	return doorman.Identity{Kind: "unknown", ID: "anonymous"}
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "not allowed"})
}
