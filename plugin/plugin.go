// Package plugin defines the plugin system for Doorman.
// Plugins are notified of lifecycle events (decision made, rule registered,
// shutdown) and can react with logging, metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import "context"

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// BeforeDecide is called before a decision is evaluated.
type BeforeDecide interface {
	OnBeforeDecide(ctx context.Context, resource, action string) error
}

// AfterDecide is called after a decision completes.
// The decision parameter is *doorman.Decision (passed as any to avoid
// an import cycle).
type AfterDecide interface {
	OnAfterDecide(ctx context.Context, resource, action string, decision any) error
}

// RuleRegistered is called for each registered rule when a guard is built.
type RuleRegistered interface {
	OnRuleRegistered(ctx context.Context, resource, ruleID string, actions []string) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
