package doorman

import (
	"context"
	"errors"
	"testing"
)

func TestResolveNamedLoader(t *testing.T) {
	reg := NewRegistry("projects")
	r := reg.Register([]string{"update"}, WithAttributeCheck(), LoadVia("project"))

	resolver := NewResolver(nil)
	want := map[string]any{"id": "p1"}
	ec := NewExecContext(alice(), "projects", "update",
		WithLoader("project", func(context.Context, *ExecContext) (any, error) {
			return want, nil
		}),
	)

	got, err := resolver.Resolve(context.Background(), ec, r)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected the loader's object")
	}
}

func TestResolveNamedLoaderMissing(t *testing.T) {
	reg := NewRegistry("projects")
	r := reg.Register([]string{"update"}, WithAttributeCheck(), LoadVia("project"))

	resolver := NewResolver(nil)
	ec := NewExecContext(alice(), "projects", "update")

	_, err := resolver.Resolve(context.Background(), ec, r)
	if !errors.Is(err, ErrLoaderNotFound) {
		t.Fatalf("expected ErrLoaderNotFound, got %v", err)
	}
}

func TestResolveRuleLoader(t *testing.T) {
	called := false
	reg := NewRegistry("projects")
	r := reg.Register([]string{"update"}, WithAttributeCheck(),
		LoadWith(func(context.Context, *ExecContext) (any, error) {
			called = true
			return struct{}{}, nil
		}),
	)

	resolver := NewResolver(nil)
	ec := NewExecContext(alice(), "projects", "update")
	if _, err := resolver.Resolve(context.Background(), ec, r); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("rule loader was not invoked")
	}
}

func TestResolveFinderDerivesDomainType(t *testing.T) {
	reg := NewRegistry("projects")
	r := reg.Register([]string{"update"}, WithAttributeCheck())

	finder := &countingFinder{objects: map[string]any{"project": struct{ Name string }{"demo"}}}
	resolver := NewResolver(finder)
	ec := NewExecContext(alice(), "projects", "update", WithParam("id", "p1"))

	obj, err := resolver.Resolve(context.Background(), ec, r)
	if err != nil {
		t.Fatal(err)
	}
	if obj == nil {
		t.Fatal("expected the found object")
	}
	if finder.calls != 1 {
		t.Fatalf("expected 1 finder call, got %d", finder.calls)
	}

	// Second resolve hits the per-request memo.
	if _, err := resolver.Resolve(context.Background(), ec, r); err != nil {
		t.Fatal(err)
	}
	if finder.calls != 1 {
		t.Fatalf("expected memoized object, got %d finder calls", finder.calls)
	}
}

func TestResolveFinderHonorsModelOverride(t *testing.T) {
	reg := NewRegistry("projects")
	r := reg.Register([]string{"update"}, WithAttributeCheck(), WithModel("workspace"))

	finder := &countingFinder{objects: map[string]any{"workspace": struct{}{}}}
	resolver := NewResolver(finder)
	ec := NewExecContext(alice(), "projects", "update", WithParam("id", "w1"))

	if _, err := resolver.Resolve(context.Background(), ec, r); err != nil {
		t.Fatal(err)
	}
}

func TestResolveFinderRequired(t *testing.T) {
	reg := NewRegistry("projects")
	r := reg.Register([]string{"update"}, WithAttributeCheck())

	resolver := NewResolver(nil)
	ec := NewExecContext(alice(), "projects", "update", WithParam("id", "p1"))

	_, err := resolver.Resolve(context.Background(), ec, r)
	if !errors.Is(err, ErrFinderRequired) {
		t.Fatalf("expected ErrFinderRequired, got %v", err)
	}
}

func TestSingularize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"projects", "project"},
		{"entries", "entry"},
		{"boxes", "box"},
		{"statuses", "status"},
		{"branches", "branch"},
		{"dashes", "dash"},
		{"access", "access"},
		{"data", "data"},
	}
	for _, c := range cases {
		if got := singularize(c.in); got != c.want {
			t.Errorf("singularize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
