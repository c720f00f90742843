package doorman

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xraph/doorman/decisionlog"
	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/plugin"
)

// Guard is the decision engine for one protected resource. It selects the
// rules matching a request, evaluates every one of them, AND-combines their
// verdicts, and records the outcome.
type Guard struct {
	registry   *Registry
	authorizer Authorizer
	finder     Finder
	resolver   ObjectResolver
	cache      Cache
	recorder   decisionlog.Store
	plugins    *plugin.Registry
	logger     *slog.Logger
	config     Config
}

// NewGuard creates a Guard over the given rule registry.
func NewGuard(registry *Registry, opts ...Option) (*Guard, error) {
	g := &Guard{
		registry: registry,
		logger:   slog.Default(),
		config:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.registry == nil {
		return nil, ErrRegistryRequired
	}
	if g.authorizer == nil {
		return nil, ErrAuthorizerRequired
	}
	if g.resolver == nil {
		idParam := g.config.LoadParam
		if idParam == "" {
			idParam = defaultLoadParam
		}
		g.resolver = &finderResolver{finder: g.finder, idParam: idParam}
	}

	if g.plugins != nil {
		ctx := context.Background()
		for _, r := range g.registry.Rules() {
			g.plugins.EmitRuleRegistered(ctx, g.registry.Resource(), r.ID().String(), r.Actions())
		}
	}
	return g, nil
}

// Registry returns the rule registry the guard decides against.
func (g *Guard) Registry() *Registry { return g.registry }

// Plugins returns the plugin registry (may be nil).
func (g *Guard) Plugins() *plugin.Registry { return g.plugins }

// Decide evaluates the request and always produces a decision. Rule
// evaluation failures never escape as errors; they surface as denied
// decisions with a reason and cause. This is the hot path.
func (g *Guard) Decide(ctx context.Context, action string, ec *ExecContext) *Decision {
	start := time.Now()
	scope := scopeFromContext(ctx)

	if g.plugins != nil {
		g.plugins.EmitBeforeDecide(ctx, g.registry.Resource(), action)
	}

	rules := g.registry.RulesMatching(action)
	if len(rules) == 0 {
		rules = g.registry.WildcardRules()
	}
	if len(rules) == 0 {
		return g.finish(ctx, action, ec, scope, start, &Decision{
			Reason: ReasonNoMatchingRule,
			Cause:  fmt.Sprintf("no rule covers action %q on %s", action, g.registry.Resource()),
		})
	}

	cacheable := g.cache != nil && cacheSafe(rules)
	if cacheable {
		if cached, ok := g.cache.Get(ctx, scope.tenantID, ec, action); ok {
			cached.EvalTimeNs = time.Since(start).Nanoseconds()
			if g.plugins != nil {
				g.plugins.EmitAfterDecide(ctx, g.registry.Resource(), action, cached)
			}
			return cached
		}
	}

	decision := g.combine(ctx, action, ec, rules)

	// Error outcomes are transient; replaying one for the cache TTL would
	// turn a backend hiccup into a standing denial.
	if cacheable && decision.Reason != ReasonEvaluationError {
		g.cache.Set(ctx, scope.tenantID, ec, action, decision)
	}
	return g.finish(ctx, action, ec, scope, start, decision)
}

// Enforce runs Decide and converts a denial into an error.
func (g *Guard) Enforce(ctx context.Context, action string, ec *ExecContext) error {
	decision := g.Decide(ctx, action, ec)
	if !decision.Allowed {
		return fmt.Errorf("%w: %s: %s", ErrAccessDenied, decision.Reason, decision.Cause)
	}
	return nil
}

// combine evaluates every selected rule and ANDs the verdicts. A plain
// denial does not stop evaluation of the remaining rules; an evaluation
// failure does, since later verdicts could not change the outcome and the
// failure's cause is the one worth reporting.
func (g *Guard) combine(ctx context.Context, action string, ec *ExecContext, rules []*Rule) *Decision {
	decision := &Decision{Allowed: true, Reason: ReasonAllowed}

	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			decision.Allowed = false
			decision.Reason = ReasonEvaluationError
			decision.Cause = err.Error()
			return decision
		}

		ok, err := r.evaluate(ctx, action, ec, g.authorizer, g.resolver)
		if err != nil {
			decision.Allowed = false
			decision.Cause = err.Error()
			if errors.Is(err, ErrNotAuthorized) || errors.Is(err, ErrObjectNotFound) {
				decision.Reason = ReasonEvaluationDenied
			} else {
				decision.Reason = ReasonEvaluationError
			}
			decision.MatchedBy = append(decision.MatchedBy, RuleInfo{
				RuleID:    r.ID().String(),
				Privilege: r.effectivePrivilege(action),
				Allowed:   false,
			})
			return decision
		}

		decision.MatchedBy = append(decision.MatchedBy, RuleInfo{
			RuleID:    r.ID().String(),
			Privilege: r.effectivePrivilege(action),
			Allowed:   ok,
		})
		if !ok {
			decision.Allowed = false
			decision.Reason = ReasonEvaluationDenied
			if decision.Cause == "" {
				decision.Cause = fmt.Sprintf("rule %s denied %s", r.ID(), r.effectivePrivilege(action))
			}
		}
	}
	return decision
}

// finish stamps timing, records, and fires the after hook.
func (g *Guard) finish(ctx context.Context, action string, ec *ExecContext, scope tenantScope, start time.Time, decision *Decision) *Decision {
	decision.EvalTimeNs = time.Since(start).Nanoseconds()

	if g.recorder != nil && g.config.recordEnabled() {
		g.record(ctx, action, ec, scope, decision)
	}
	if g.plugins != nil {
		g.plugins.EmitAfterDecide(ctx, g.registry.Resource(), action, decision)
	}
	return decision
}

func (g *Guard) record(ctx context.Context, action string, ec *ExecContext, scope tenantScope, decision *Decision) {
	matched := make([]string, 0, len(decision.MatchedBy))
	for _, m := range decision.MatchedBy {
		matched = append(matched, m.RuleID)
	}

	entry := &decisionlog.Entry{
		ID:           id.NewDecisionLogID(),
		TenantID:     scope.tenantID,
		AppID:        scope.appID,
		IdentityKind: string(ec.Identity().Kind),
		IdentityID:   ec.Identity().ID,
		Resource:     ec.Resource(),
		Action:       action,
		Allowed:      decision.Allowed,
		Reason:       string(decision.Reason),
		Cause:        decision.Cause,
		MatchedRules: strings.Join(matched, ","),
		EvalTimeNs:   decision.EvalTimeNs,
		RequestIP:    ec.Param(ParamRemoteIP),
		CreatedAt:    time.Now().UTC(),
	}
	if err := g.recorder.CreateEntry(ctx, entry); err != nil {
		g.logger.Warn("doorman: failed to record decision",
			"resource", entry.Resource,
			"action", entry.Action,
			"error", err,
		)
	}
}

// cacheSafe reports whether every rule's verdict depends only on the
// identity, resource, and action. Rules that load objects or run custom
// predicates can depend on state the cache key does not capture.
func cacheSafe(rules []*Rule) bool {
	for _, r := range rules {
		if r.AttributeCheck() || r.HasPredicate() {
			return false
		}
	}
	return true
}
