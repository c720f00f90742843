package doorman

import "context"

// Cache provides caching for access decisions. Keys are scoped to the
// tenant resolved from the request context, so one tenant's verdicts are
// never served to another.
//
// The Guard only consults the cache when every rule matching the request is
// cache-safe: no attribute check and no custom predicate. Decisions that
// depend on a loaded object or on request-local state are never cached, and
// neither are evaluation_error outcomes.
type Cache interface {
	// Get returns a cached decision for the request, if available.
	Get(ctx context.Context, tenantID string, ec *ExecContext, action string) (*Decision, bool)

	// Set stores a decision for the request.
	Set(ctx context.Context, tenantID string, ec *ExecContext, action string, decision *Decision)

	// InvalidateTenant removes all cached decisions for a tenant.
	InvalidateTenant(ctx context.Context, tenantID string)

	// InvalidateIdentity removes a tenant's cached decisions for one identity.
	InvalidateIdentity(ctx context.Context, tenantID string, kind IdentityKind, identityID string)
}
