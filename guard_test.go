package doorman

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/doorman/store/memory"
)

// permitCall records one Authorizer invocation.
type permitCall struct {
	privilege string
	context   string
	object    any
	skipTest  bool
}

// stubAuthorizer answers Permit from a table and records every call.
type stubAuthorizer struct {
	allow map[string]bool // privilege -> verdict
	err   error
	calls []permitCall
}

func (s *stubAuthorizer) Permit(_ context.Context, _ Identity, privilege, contextName string, object any, skipAttributeTest bool) (bool, error) {
	s.calls = append(s.calls, permitCall{privilege, contextName, object, skipAttributeTest})
	if s.err != nil {
		return false, s.err
	}
	return s.allow[privilege], nil
}

// countingFinder returns canned objects and counts lookups.
type countingFinder struct {
	objects map[string]any // domainType -> object
	calls   int
}

func (f *countingFinder) Find(_ context.Context, domainType, objectID string) (any, error) {
	f.calls++
	obj, ok := f.objects[domainType]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", domainType, objectID, ErrObjectNotFound)
	}
	return obj, nil
}

func alice() Identity {
	return Identity{Kind: IdentityUser, ID: "alice"}
}

func newTestGuard(t *testing.T, reg *Registry, opts ...Option) *Guard {
	t.Helper()
	g, err := NewGuard(reg, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewGuardRequiresRegistryAndAuthorizer(t *testing.T) {
	if _, err := NewGuard(nil, WithAuthorizer(&stubAuthorizer{})); !errors.Is(err, ErrRegistryRequired) {
		t.Fatalf("expected ErrRegistryRequired, got %v", err)
	}
	if _, err := NewGuard(NewRegistry("projects")); !errors.Is(err, ErrAuthorizerRequired) {
		t.Fatalf("expected ErrAuthorizerRequired, got %v", err)
	}
}

func TestDecideDefaultDeny(t *testing.T) {
	reg := NewRegistry("projects")
	g := newTestGuard(t, reg, WithAuthorizer(&stubAuthorizer{}))

	ec := NewExecContext(alice(), "projects", "update")
	d := g.Decide(context.Background(), "update", ec)
	if d.Allowed {
		t.Fatal("expected default deny")
	}
	if d.Reason != ReasonNoMatchingRule {
		t.Fatalf("expected no_matching_rule, got %s", d.Reason)
	}
}

func TestDecideAllowed(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, Require("projects:write"))

	az := &stubAuthorizer{allow: map[string]bool{"projects:write": true}}
	g := newTestGuard(t, reg, WithAuthorizer(az))

	ec := NewExecContext(alice(), "projects", "update")
	d := g.Decide(context.Background(), "update", ec)
	if !d.Allowed {
		t.Fatalf("expected allowed, got %s: %s", d.Reason, d.Cause)
	}
	if d.Reason != ReasonAllowed {
		t.Fatalf("expected allowed reason, got %s", d.Reason)
	}
	if d.EvalTimeNs <= 0 {
		t.Fatal("expected positive eval time")
	}
	if len(az.calls) != 1 || az.calls[0].privilege != "projects:write" {
		t.Fatalf("unexpected authorizer calls: %+v", az.calls)
	}
	if !az.calls[0].skipTest {
		t.Fatal("rule without attribute check should skip the attribute test")
	}
}

func TestDecideANDCombinesWildcardRules(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{ActionAll}, Require("projects:member"))
	reg.Register([]string{ActionAll}, Require("projects:active"))

	az := &stubAuthorizer{allow: map[string]bool{
		"projects:member": true,
		"projects:active": true,
	}}
	g := newTestGuard(t, reg, WithAuthorizer(az))

	ec := NewExecContext(alice(), "projects", "archive")
	d := g.Decide(context.Background(), "archive", ec)
	if !d.Allowed {
		t.Fatalf("expected allowed, got %s: %s", d.Reason, d.Cause)
	}
	if len(d.MatchedBy) != 2 {
		t.Fatalf("both wildcard rules must apply, got %d", len(d.MatchedBy))
	}

	// One failing conjunct denies the whole decision.
	az.allow["projects:active"] = false
	d = g.Decide(context.Background(), "archive", NewExecContext(alice(), "projects", "archive"))
	if d.Allowed {
		t.Fatal("expected deny when one conjunct fails")
	}
}

func TestDecidePlainDenialDoesNotShortCircuit(t *testing.T) {
	reg := NewRegistry("projects")
	denied := 0
	reg.Register([]string{ActionAll}, When(func(context.Context, *ExecContext) (bool, error) {
		denied++
		return false, nil
	}))
	evaluated := false
	reg.Register([]string{ActionAll}, When(func(context.Context, *ExecContext) (bool, error) {
		evaluated = true
		return true, nil
	}))

	g := newTestGuard(t, reg, WithAuthorizer(&stubAuthorizer{}))

	ec := NewExecContext(alice(), "projects", "export")
	d := g.Decide(context.Background(), "export", ec)
	if d.Allowed {
		t.Fatal("expected deny")
	}
	if d.Reason != ReasonEvaluationDenied {
		t.Fatalf("expected evaluation_denied, got %s", d.Reason)
	}
	if !evaluated {
		t.Fatal("second rule was not evaluated after a plain denial")
	}
	if len(d.MatchedBy) != 2 {
		t.Fatalf("expected 2 evaluated rules, got %d", len(d.MatchedBy))
	}
}

func TestDecideWildcardFallback(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, Require("projects:write"))
	reg.Register([]string{ActionAll}, Require("projects:any"))

	az := &stubAuthorizer{allow: map[string]bool{"projects:any": true}}
	g := newTestGuard(t, reg, WithAuthorizer(az))

	// "export" matches no specific rule, so the wildcard applies.
	ec := NewExecContext(alice(), "projects", "export")
	d := g.Decide(context.Background(), "export", ec)
	if !d.Allowed {
		t.Fatalf("expected wildcard allow, got %s: %s", d.Reason, d.Cause)
	}
	if az.calls[0].privilege != "projects:any" {
		t.Fatalf("expected wildcard privilege, got %s", az.calls[0].privilege)
	}
}

func TestDecidePredicateBypassesAuthorizer(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, When(func(_ context.Context, ec *ExecContext) (bool, error) {
		return ec.Identity().ID == "alice", nil
	}))

	az := &stubAuthorizer{}
	g := newTestGuard(t, reg, WithAuthorizer(az))

	ec := NewExecContext(alice(), "projects", "update")
	if d := g.Decide(context.Background(), "update", ec); !d.Allowed {
		t.Fatalf("expected allowed, got %s", d.Reason)
	}
	if len(az.calls) != 0 {
		t.Fatal("predicate rule must not consult the authorizer")
	}

	ec = NewExecContext(Identity{Kind: IdentityUser, ID: "bob"}, "projects", "update")
	if d := g.Decide(context.Background(), "update", ec); d.Allowed {
		t.Fatal("expected deny for bob")
	}
}

func TestDecideLoadsObjectOncePerRequest(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{ActionAll}, Require("projects:write"), WithAttributeCheck())
	reg.Register([]string{ActionAll}, Require("projects:admin"), WithAttributeCheck())

	finder := &countingFinder{objects: map[string]any{"project": map[string]any{"id": "p1"}}}
	az := &stubAuthorizer{allow: map[string]bool{"projects:write": true, "projects:admin": true}}
	g := newTestGuard(t, reg, WithAuthorizer(az), WithFinder(finder))

	ec := NewExecContext(alice(), "projects", "update", WithParam("id", "p1"))
	d := g.Decide(context.Background(), "update", ec)
	if !d.Allowed {
		t.Fatalf("expected allowed, got %s: %s", d.Reason, d.Cause)
	}
	if finder.calls != 1 {
		t.Fatalf("expected 1 finder call, got %d", finder.calls)
	}
	for _, c := range az.calls {
		if c.object == nil {
			t.Fatal("attribute rule evaluated without the loaded object")
		}
		if c.skipTest {
			t.Fatal("attribute rule must not skip the attribute test")
		}
	}
}

func TestDecideObjectNotFoundDenies(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, WithAttributeCheck())

	finder := &countingFinder{objects: map[string]any{}}
	g := newTestGuard(t, reg, WithAuthorizer(&stubAuthorizer{}), WithFinder(finder))

	ec := NewExecContext(alice(), "projects", "update", WithParam("id", "missing"))
	d := g.Decide(context.Background(), "update", ec)
	if d.Allowed {
		t.Fatal("expected deny")
	}
	if d.Reason != ReasonEvaluationDenied {
		t.Fatalf("expected evaluation_denied for missing object, got %s", d.Reason)
	}
	if d.Cause == "" {
		t.Fatal("expected a cause")
	}
}

func TestDecideUnexpectedErrorIsEvaluationError(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"})

	az := &stubAuthorizer{err: errors.New("backend timeout")}
	g := newTestGuard(t, reg, WithAuthorizer(az))

	ec := NewExecContext(alice(), "projects", "update")
	d := g.Decide(context.Background(), "update", ec)
	if d.Allowed {
		t.Fatal("expected deny")
	}
	if d.Reason != ReasonEvaluationError {
		t.Fatalf("expected evaluation_error, got %s", d.Reason)
	}
}

func TestDecideErrNotAuthorizedIsEvaluationDenied(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, When(func(context.Context, *ExecContext) (bool, error) {
		return false, fmt.Errorf("%w: quota exceeded", ErrNotAuthorized)
	}))

	g := newTestGuard(t, reg, WithAuthorizer(&stubAuthorizer{}))

	ec := NewExecContext(alice(), "projects", "update")
	d := g.Decide(context.Background(), "update", ec)
	if d.Reason != ReasonEvaluationDenied {
		t.Fatalf("expected evaluation_denied, got %s", d.Reason)
	}
}

func TestDecideErrorStopsRemainingRules(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{ActionAll}, When(func(context.Context, *ExecContext) (bool, error) {
		return false, errors.New("boom")
	}))
	evaluated := false
	reg.Register([]string{ActionAll}, When(func(context.Context, *ExecContext) (bool, error) {
		evaluated = true
		return true, nil
	}))

	g := newTestGuard(t, reg, WithAuthorizer(&stubAuthorizer{}))

	ec := NewExecContext(alice(), "projects", "export")
	d := g.Decide(context.Background(), "export", ec)
	if d.Reason != ReasonEvaluationError {
		t.Fatalf("expected evaluation_error, got %s", d.Reason)
	}
	if evaluated {
		t.Fatal("rules after a failure must not run")
	}
}

func TestDecideCancelledContext(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"})

	g := newTestGuard(t, reg, WithAuthorizer(&stubAuthorizer{allow: map[string]bool{"update": true}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ec := NewExecContext(alice(), "projects", "update")
	d := g.Decide(ctx, "update", ec)
	if d.Allowed {
		t.Fatal("expected deny on cancelled context")
	}
	if d.Reason != ReasonEvaluationError {
		t.Fatalf("expected evaluation_error, got %s", d.Reason)
	}
}

func TestEnforce(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, Require("projects:write"))

	az := &stubAuthorizer{allow: map[string]bool{"projects:write": true}}
	g := newTestGuard(t, reg, WithAuthorizer(az))

	ec := NewExecContext(alice(), "projects", "update")
	if err := g.Enforce(context.Background(), "update", ec); err != nil {
		t.Fatalf("expected no error for allowed check, got %v", err)
	}

	ec = NewExecContext(alice(), "projects", "delete")
	err := g.Enforce(context.Background(), "delete", ec)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestDecideRecordsToStore(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, Require("projects:write"))

	s := memory.New()
	az := &stubAuthorizer{allow: map[string]bool{"projects:write": true}}
	g := newTestGuard(t, reg, WithAuthorizer(az), WithRecorder(s))

	ctx := WithTenant(context.Background(), "app1", "t1")
	ec := NewExecContext(alice(), "projects", "update",
		WithParam(ParamRemoteIP, "203.0.113.7"),
	)
	g.Decide(ctx, "update", ec)

	entries, err := s.ListEntries(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 recorded entry, got %d", len(entries))
	}
	e := entries[0]
	if e.TenantID != "t1" || e.AppID != "app1" {
		t.Fatalf("tenant scope not recorded: %+v", e)
	}
	if !e.Allowed || e.Resource != "projects" || e.Action != "update" {
		t.Fatalf("decision not recorded faithfully: %+v", e)
	}
	if e.IdentityKind != string(IdentityUser) || e.IdentityID != "alice" {
		t.Fatalf("identity not recorded: %+v", e)
	}
	if e.MatchedRules == "" {
		t.Fatal("expected matched rule IDs")
	}
	if e.RequestIP != "203.0.113.7" {
		t.Fatalf("client address not recorded: %q", e.RequestIP)
	}
}

func TestDecideRecordingCanBeDisabled(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"})

	s := memory.New()
	off := false
	g := newTestGuard(t, reg,
		WithAuthorizer(&stubAuthorizer{allow: map[string]bool{"update": true}}),
		WithRecorder(s),
		WithConfig(Config{RecordDecisions: &off}),
	)

	g.Decide(context.Background(), "update", NewExecContext(alice(), "projects", "update"))

	n, err := s.CountEntries(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected no recorded entries, got %d", n)
	}
}

// fixedCache always returns the same decision.
type fixedCache struct {
	decision *Decision
	sets     int
}

func (c *fixedCache) Get(context.Context, string, *ExecContext, string) (*Decision, bool) {
	if c.decision == nil {
		return nil, false
	}
	return c.decision, true
}

func (c *fixedCache) Set(_ context.Context, _ string, _ *ExecContext, _ string, d *Decision) {
	c.sets++
	c.decision = d
}

func (c *fixedCache) InvalidateTenant(context.Context, string) {}

func (c *fixedCache) InvalidateIdentity(context.Context, string, IdentityKind, string) {}

func TestDecideUsesCacheForSafeRules(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, Require("projects:write"))

	az := &stubAuthorizer{allow: map[string]bool{"projects:write": true}}
	c := &fixedCache{}
	g := newTestGuard(t, reg, WithAuthorizer(az), WithCache(c))

	ec := NewExecContext(alice(), "projects", "update")
	g.Decide(context.Background(), "update", ec)
	if c.sets != 1 {
		t.Fatalf("expected decision to be cached, sets=%d", c.sets)
	}

	g.Decide(context.Background(), "update", NewExecContext(alice(), "projects", "update"))
	if len(az.calls) != 1 {
		t.Fatalf("expected cached decision to skip evaluation, calls=%d", len(az.calls))
	}
}

// recordingCache keys entries by tenant and action, mirroring how a real
// cache partitions decisions.
type recordingCache struct {
	entries map[string]*Decision
}

func (c *recordingCache) Get(_ context.Context, tenantID string, _ *ExecContext, action string) (*Decision, bool) {
	d, ok := c.entries[tenantID+":"+action]
	return d, ok
}

func (c *recordingCache) Set(_ context.Context, tenantID string, _ *ExecContext, action string, d *Decision) {
	c.entries[tenantID+":"+action] = d
}

func (c *recordingCache) InvalidateTenant(context.Context, string) {}

func (c *recordingCache) InvalidateIdentity(context.Context, string, IdentityKind, string) {}

// tenantAuthorizer permits only requests carrying the named tenant.
type tenantAuthorizer struct {
	allowTenant string
}

func (a *tenantAuthorizer) Permit(ctx context.Context, _ Identity, _, _ string, _ any, _ bool) (bool, error) {
	return tenantIDFromContext(ctx) == a.allowTenant, nil
}

func TestDecideCacheIsTenantScoped(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, Require("projects:write"))

	az := &tenantAuthorizer{allowTenant: "t1"}
	c := &recordingCache{entries: make(map[string]*Decision)}
	g := newTestGuard(t, reg, WithAuthorizer(az), WithCache(c))

	t1 := WithTenant(context.Background(), "app1", "t1")
	d := g.Decide(t1, "update", NewExecContext(alice(), "projects", "update"))
	if !d.Allowed {
		t.Fatalf("expected allow for t1, got %s: %s", d.Reason, d.Cause)
	}

	// The same identity under another tenant must be evaluated fresh, not
	// served t1's cached allow.
	t2 := WithTenant(context.Background(), "app1", "t2")
	d = g.Decide(t2, "update", NewExecContext(alice(), "projects", "update"))
	if d.Allowed {
		t.Fatal("t2 was served t1's cached decision")
	}
}

func TestDecideDoesNotCacheErrorOutcomes(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, Require("projects:write"))

	az := &stubAuthorizer{err: errors.New("backend timeout")}
	c := &fixedCache{}
	g := newTestGuard(t, reg, WithAuthorizer(az), WithCache(c))

	d := g.Decide(context.Background(), "update", NewExecContext(alice(), "projects", "update"))
	if d.Reason != ReasonEvaluationError {
		t.Fatalf("expected evaluation_error, got %s", d.Reason)
	}
	if c.sets != 0 {
		t.Fatal("transient failures must not be cached")
	}

	// Once the backend recovers the request is evaluated fresh.
	az.err = nil
	az.allow = map[string]bool{"projects:write": true}
	d = g.Decide(context.Background(), "update", NewExecContext(alice(), "projects", "update"))
	if !d.Allowed {
		t.Fatalf("expected allow after recovery, got %s: %s", d.Reason, d.Cause)
	}
	if c.sets != 1 {
		t.Fatalf("expected the fresh verdict to be cached, sets=%d", c.sets)
	}
}

func TestDecideSkipsCacheForAttributeRules(t *testing.T) {
	reg := NewRegistry("projects")
	reg.Register([]string{"update"}, WithAttributeCheck())

	finder := &countingFinder{objects: map[string]any{"project": struct{}{}}}
	c := &fixedCache{decision: &Decision{Allowed: true, Reason: ReasonAllowed}}
	az := &stubAuthorizer{allow: map[string]bool{"update": true}}
	g := newTestGuard(t, reg, WithAuthorizer(az), WithFinder(finder), WithCache(c))

	ec := NewExecContext(alice(), "projects", "update", WithParam("id", "p1"))
	g.Decide(context.Background(), "update", ec)
	if len(az.calls) != 1 {
		t.Fatal("attribute rule must be evaluated, never served from cache")
	}
	if c.sets != 0 {
		t.Fatal("attribute rule decisions must not be cached")
	}
}
