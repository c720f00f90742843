package doorman

import "github.com/xraph/doorman/id"

// Registry is the ordered rule collection for one protected resource.
//
// It is populated during a single-threaded configuration phase (analogous
// to route configuration) and treated as read-only for the rest of the
// process's life, so reads need no synchronization.
type Registry struct {
	resource string
	rules    []*Rule
}

// NewRegistry creates an empty registry scoped to the named resource.
func NewRegistry(resource string) *Registry {
	return &Registry{resource: resource}
}

// Resource returns the name of the protected resource this registry guards.
func (g *Registry) Resource() string { return g.resource }

// Register constructs a rule for the given actions and appends it.
//
// Every non-wildcard action in the new rule is removed from the action set
// of each existing non-wildcard rule, so later declarations supersede
// earlier ownership of those specific actions without touching the rest of
// the older rules. Wildcard rules are never narrowed.
func (g *Registry) Register(actions []string, opts ...RuleOption) *Rule {
	r := &Rule{
		id:           id.NewRuleID(),
		resource:     g.resource,
		actionSet:    make(map[string]struct{}, len(actions)),
		loadStrategy: LoadFinder,
	}
	for _, a := range actions {
		if _, dup := r.actionSet[a]; dup {
			continue
		}
		r.actionSet[a] = struct{}{}
		r.actions = append(r.actions, a)
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, existing := range g.rules {
		if existing.IsWildcard() {
			continue
		}
		for _, a := range r.actions {
			existing.removeAction(a)
		}
	}

	g.rules = append(g.rules, r)
	return r
}

// Rules returns every registered rule in registration order.
func (g *Registry) Rules() []*Rule {
	out := make([]*Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// RulesMatching returns the non-wildcard rules whose action set contains
// the action, in registration order.
func (g *Registry) RulesMatching(action string) []*Rule {
	var out []*Rule
	for _, r := range g.rules {
		if r.IsWildcard() {
			continue
		}
		if r.Matches(action) {
			out = append(out, r)
		}
	}
	return out
}

// WildcardRules returns the rules containing the wildcard marker, in
// registration order. Overlapping wildcard rules are not merged; all of
// them apply when the fallback is taken.
func (g *Registry) WildcardRules() []*Rule {
	var out []*Rule
	for _, r := range g.rules {
		if r.IsWildcard() {
			out = append(out, r)
		}
	}
	return out
}
