package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/doorman"
)

func TestSeedAndFind(t *testing.T) {
	f := New()
	f.Seed("project", "p1", map[string]any{"name": "demo"})

	obj, err := f.Find(context.Background(), "project", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if obj == nil {
		t.Fatal("expected the seeded object")
	}
}

func TestFindNotFound(t *testing.T) {
	f := New()

	_, err := f.Find(context.Background(), "project", "missing")
	if !errors.Is(err, doorman.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
