// Package static provides a declarative, in-memory Authorizer. Grants map
// an identity to a privilege inside an evaluation context, optionally gated
// by a condition over the loaded object. It is intended for applications
// whose privilege matrix is known at startup, and for tests.
package static

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xraph/doorman"
)

// Compile-time interface check.
var _ doorman.Authorizer = (*Authorizer)(nil)

// Condition gates a grant on the loaded object's attributes. It is only
// consulted for attribute-sensitive checks; identity-only checks match the
// grant unconditionally.
type Condition func(identity doorman.Identity, object any) (bool, error)

// Grant allows one identity (or a glob of identities) a privilege inside an
// evaluation context. Privilege and context support trailing-star globs,
// e.g. "projects:*".
type Grant struct {
	IdentityKind doorman.IdentityKind
	IdentityID   string
	Privilege    string
	Context      string
	Condition    Condition
}

// Authorizer is a thread-safe static grant table.
type Authorizer struct {
	mu     sync.RWMutex
	grants []Grant
}

// New creates a static authorizer with the given grants.
func New(grants ...Grant) *Authorizer {
	return &Authorizer{grants: grants}
}

// Allow appends a grant.
func (a *Authorizer) Allow(g Grant) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.grants = append(a.grants, g)
}

// Permit reports whether the identity holds the privilege in the given
// context. When skipAttributeTest is false the grant's condition is applied
// to the loaded object; a grant without a condition matches any object.
func (a *Authorizer) Permit(_ context.Context, identity doorman.Identity, privilege, contextName string, object any, skipAttributeTest bool) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, g := range a.grants {
		if !g.matchesIdentity(identity) {
			continue
		}
		if !matchGlob(g.Privilege, privilege) {
			continue
		}
		if !matchGlob(g.Context, contextName) {
			continue
		}
		if skipAttributeTest || g.Condition == nil {
			return true, nil
		}
		ok, err := g.Condition(identity, object)
		if err != nil {
			return false, fmt.Errorf("static: condition for %s on %s: %w", privilege, contextName, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (g Grant) matchesIdentity(identity doorman.Identity) bool {
	if g.IdentityKind != "" && g.IdentityKind != identity.Kind {
		return false
	}
	return matchGlob(g.IdentityID, identity.ID)
}

// matchGlob checks if a pattern matches a value with simple glob support.
// Supports trailing '*' (e.g., "projects:*" matches "projects:update").
func matchGlob(pattern, value string) bool {
	if pattern == "*" || pattern == "" {
		return true
	}
	if pattern == value {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(value, prefix)
	}
	return false
}
