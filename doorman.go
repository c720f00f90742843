// Package doorman provides request-time access-control decisions for Go.
//
// A Registry holds the authorization rules declared for one protected
// resource. A Guard matches an incoming action against that registry,
// lazily resolves the target domain object for attribute-sensitive checks,
// and combines the verdicts of every matching rule into a single allow/deny
// Decision by delegating to an external privilege engine (the Authorizer).
//
//	reg := doorman.NewRegistry("users")
//	reg.Register([]string{"new", "create"}, doorman.Require("create_users"))
//	reg.Register([]string{doorman.ActionAll}, doorman.Require("manage_users"))
//
//	guard, err := doorman.NewGuard(reg,
//	    doorman.WithAuthorizer(az),
//	)
//	dec := guard.Decide(ctx, "create", ec)
package doorman

import "context"

// IdentityKind identifies the type of actor a request runs as.
type IdentityKind string

const (
	// IdentityUser represents a human user.
	IdentityUser IdentityKind = "user"

	// IdentityAPIKey represents an API key caller.
	IdentityAPIKey IdentityKind = "api_key"

	// IdentityService represents a service-to-service caller.
	IdentityService IdentityKind = "service"
)

// Identity represents the actor of an access-control decision. It is
// supplied by the host per request (session, token, or service auth).
type Identity struct {
	Kind       IdentityKind   `json:"kind"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Reason is the decision outcome code.
type Reason string

const (
	// ReasonAllowed means every matching rule reported allow.
	ReasonAllowed Reason = "allowed"

	// ReasonNoMatchingRule means no declared rule covers the action.
	// Absence of a rule is always a denial, never an implicit allow.
	ReasonNoMatchingRule Reason = "no_matching_rule"

	// ReasonEvaluationDenied means a matched rule was evaluated and the
	// privilege engine, a custom predicate, or object resolution denied it.
	ReasonEvaluationDenied Reason = "evaluation_denied"

	// ReasonEvaluationError means evaluation failed for a cause unrelated
	// to authorization. Treated as a denial, distinguishable for diagnostics.
	ReasonEvaluationError Reason = "evaluation_error"
)

// Decision is the outcome of one access-control check. It is produced
// fresh per request and never persisted by the core.
type Decision struct {
	Allowed    bool       `json:"allowed"`
	Reason     Reason     `json:"reason"`
	Cause      string     `json:"cause,omitempty"`
	MatchedBy  []RuleInfo `json:"matched_by,omitempty"`
	EvalTimeNs int64      `json:"eval_time_ns"`
}

// RuleInfo describes one rule that participated in a decision.
type RuleInfo struct {
	RuleID    string `json:"rule_id"`
	Privilege string `json:"privilege,omitempty"`
	Allowed   bool   `json:"allowed"`
}

// Authorizer is the external privilege-evaluation engine. Doorman never
// interprets privilege grammar itself; it hands the effective privilege,
// evaluation context, and (optionally) the resolved object to Permit.
//
// When skipAttributeTest is true the object is nil and the engine must
// decide on privilege and context alone.
type Authorizer interface {
	Permit(ctx context.Context, identity Identity, privilege, contextName string, object any, skipAttributeTest bool) (bool, error)
}

// Finder loads a domain object by type name and identifier. It backs the
// default-finder load strategy. Implementations report a missing object
// with an error wrapping ErrObjectNotFound.
type Finder interface {
	Find(ctx context.Context, domainType, objectID string) (any, error)
}
