package plugin

import (
	"context"
	"log/slog"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeDecideEntry struct {
	name string
	hook BeforeDecide
}
type afterDecideEntry struct {
	name string
	hook AfterDecide
}
type ruleRegisteredEntry struct {
	name string
	hook RuleRegistered
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

	beforeDecide   []beforeDecideEntry
	afterDecide    []afterDecideEntry
	ruleRegistered []ruleRegisteredEntry
	shutdown       []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeDecide); ok {
		r.beforeDecide = append(r.beforeDecide, beforeDecideEntry{name, h})
	}
	if h, ok := p.(AfterDecide); ok {
		r.afterDecide = append(r.afterDecide, afterDecideEntry{name, h})
	}
	if h, ok := p.(RuleRegistered); ok {
		r.ruleRegistered = append(r.ruleRegistered, ruleRegisteredEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// EmitBeforeDecide notifies all plugins that implement BeforeDecide.
func (r *Registry) EmitBeforeDecide(ctx context.Context, resource, action string) {
	for _, e := range r.beforeDecide {
		if err := e.hook.OnBeforeDecide(ctx, resource, action); err != nil {
			r.logHookError("OnBeforeDecide", e.name, err)
		}
	}
}

// EmitAfterDecide notifies all plugins that implement AfterDecide.
func (r *Registry) EmitAfterDecide(ctx context.Context, resource, action string, decision any) {
	for _, e := range r.afterDecide {
		if err := e.hook.OnAfterDecide(ctx, resource, action, decision); err != nil {
			r.logHookError("OnAfterDecide", e.name, err)
		}
	}
}

// EmitRuleRegistered notifies all plugins that implement RuleRegistered.
func (r *Registry) EmitRuleRegistered(ctx context.Context, resource, ruleID string, actions []string) {
	for _, e := range r.ruleRegistered {
		if err := e.hook.OnRuleRegistered(ctx, resource, ruleID, actions); err != nil {
			r.logHookError("OnRuleRegistered", e.name, err)
		}
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
