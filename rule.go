package doorman

import (
	"context"

	"github.com/xraph/doorman/id"
)

// ActionAll is the wildcard action marker. A rule whose action set contains
// it is matched only as a fallback, after every specific rule has been
// given the chance to claim the action.
const ActionAll = "all"

// LoadStrategy selects how a rule obtains the target object for
// attribute-sensitive evaluation.
type LoadStrategy string

const (
	// LoadFinder resolves the object through the configured Finder,
	// memoizing it on the execution context. This is the default.
	LoadFinder LoadStrategy = "finder"

	// LoadNamed invokes a loader registered on the execution context
	// under the rule's loader name.
	LoadNamed LoadStrategy = "named"

	// LoadFunc invokes the loader function attached to the rule itself.
	LoadFunc LoadStrategy = "func"
)

// Loader produces the target domain object for a request.
type Loader func(ctx context.Context, ec *ExecContext) (any, error)

// Predicate is a custom decision function. When set on a rule it fully
// replaces delegation to the Authorizer: its verdict is the rule's verdict.
// An error wrapping ErrNotAuthorized is treated as an explicit denial with
// that error as cause; any other error surfaces as an evaluation error.
type Predicate func(ctx context.Context, ec *ExecContext) (bool, error)

// Rule is an immutable declaration binding a set of actions to a required
// privilege, an evaluation context, and an object-loading strategy.
// Rules are constructed through Registry.Register and read-only afterwards.
type Rule struct {
	id             id.RuleID
	resource       string
	actions        []string
	actionSet      map[string]struct{}
	privilege      string
	context        string
	attributeCheck bool
	model          string
	loadStrategy   LoadStrategy
	loaderName     string
	loader         Loader
	predicate      Predicate
}

// RuleOption configures a rule at registration time.
type RuleOption func(*Rule)

// Require sets the privilege the rule demands. When absent, the privilege
// defaults to the action name being checked.
func Require(privilege string) RuleOption {
	return func(r *Rule) { r.privilege = privilege }
}

// InContext names the evaluation domain handed to the privilege engine.
// When absent, it defaults to the owning resource's name.
func InContext(name string) RuleOption {
	return func(r *Rule) { r.context = name }
}

// WithAttributeCheck marks the rule attribute-sensitive: the target object
// is resolved and passed to the privilege engine.
func WithAttributeCheck() RuleOption {
	return func(r *Rule) { r.attributeCheck = true }
}

// WithModel names the domain type the default finder instantiates. When
// absent, the type is derived from the rule's evaluation context.
func WithModel(name string) RuleOption {
	return func(r *Rule) { r.model = name }
}

// LoadVia makes the rule load its object through the loader registered on
// the execution context under the given name.
func LoadVia(loaderName string) RuleOption {
	return func(r *Rule) {
		r.loadStrategy = LoadNamed
		r.loaderName = loaderName
	}
}

// LoadWith attaches a loader function to the rule itself.
func LoadWith(fn Loader) RuleOption {
	return func(r *Rule) {
		r.loadStrategy = LoadFunc
		r.loader = fn
	}
}

// When attaches a custom decision predicate. A rule with a predicate never
// consults the privilege engine or the object resolver.
func When(p Predicate) RuleOption {
	return func(r *Rule) { r.predicate = p }
}

// ID returns the rule's identifier.
func (r *Rule) ID() id.RuleID { return r.id }

// Actions returns the rule's current action set in declaration order.
// Registering a later rule for an overlapping action shrinks this set.
func (r *Rule) Actions() []string {
	out := make([]string, len(r.actions))
	copy(out, r.actions)
	return out
}

// Privilege returns the declared privilege, or "" when it defaults to the
// checked action name.
func (r *Rule) Privilege() string { return r.privilege }

// Context returns the declared evaluation context, or "" when it defaults
// to the owning resource name.
func (r *Rule) Context() string { return r.context }

// AttributeCheck reports whether the rule needs the target object.
func (r *Rule) AttributeCheck() bool { return r.attributeCheck }

// Model returns the declared domain type for the default finder.
func (r *Rule) Model() string { return r.model }

// Strategy returns the rule's object-loading strategy.
func (r *Rule) Strategy() LoadStrategy { return r.loadStrategy }

// Matches reports whether the action is a member of the rule's action set.
func (r *Rule) Matches(action string) bool {
	_, ok := r.actionSet[action]
	return ok
}

// IsWildcard reports whether the rule's action set contains ActionAll.
func (r *Rule) IsWildcard() bool {
	_, ok := r.actionSet[ActionAll]
	return ok
}

// HasPredicate reports whether the rule carries a custom predicate.
func (r *Rule) HasPredicate() bool { return r.predicate != nil }

// effectivePrivilege is the declared privilege or the checked action name.
func (r *Rule) effectivePrivilege(action string) string {
	if r.privilege != "" {
		return r.privilege
	}
	return action
}

// effectiveContext is the declared context or the owning resource name.
func (r *Rule) effectiveContext() string {
	if r.context != "" {
		return r.context
	}
	return r.resource
}

// evaluate runs one rule against the request. A nil error with false means
// the rule explicitly denied; errors carry the failure for classification
// by the Guard.
func (r *Rule) evaluate(ctx context.Context, action string, ec *ExecContext, az Authorizer, resolver ObjectResolver) (bool, error) {
	if r.predicate != nil {
		return r.predicate(ctx, ec)
	}

	var object any
	if r.attributeCheck {
		obj, err := resolver.Resolve(ctx, ec, r)
		if err != nil {
			return false, err
		}
		object = obj
	}

	return az.Permit(ctx, ec.Identity(), r.effectivePrivilege(action), r.effectiveContext(), object, !r.attributeCheck)
}

// removeAction drops one action from the rule's set. The wildcard marker
// is never removed.
func (r *Rule) removeAction(action string) {
	if action == ActionAll {
		return
	}
	if _, ok := r.actionSet[action]; !ok {
		return
	}
	delete(r.actionSet, action)
	for i, a := range r.actions {
		if a == action {
			r.actions = append(r.actions[:i], r.actions[i+1:]...)
			break
		}
	}
}
