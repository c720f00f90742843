package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/doorman"
)

func execCtx(identityID, resource, action string) *doorman.ExecContext {
	identity := doorman.Identity{Kind: doorman.IdentityUser, ID: identityID}
	return doorman.NewExecContext(identity, resource, action)
}

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	ec := execCtx("u1", "projects", "update")
	decision := &doorman.Decision{Allowed: true, Reason: doorman.ReasonAllowed}

	// Miss
	_, ok := c.Get(ctx, "t1", ec, "update")
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, "t1", ec, "update", decision)
	got, ok := c.Get(ctx, "t1", ec, "update")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.Allowed {
		t.Fatal("expected allowed")
	}

	// Different action misses.
	if _, ok := c.Get(ctx, "t1", ec, "delete"); ok {
		t.Fatal("expected miss for different action")
	}
}

func TestMemoryCacheTenantIsolation(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	ec := execCtx("u1", "projects", "update")
	c.Set(ctx, "t1", ec, "update", &doorman.Decision{Allowed: true})

	// The same identity, resource, and action under another tenant must miss.
	if _, ok := c.Get(ctx, "t2", ec, "update"); ok {
		t.Fatal("t1's decision must not be visible to t2")
	}
	if _, ok := c.Get(ctx, "t1", ec, "update"); !ok {
		t.Fatal("expected hit for the owning tenant")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	ec := execCtx("u1", "projects", "update")
	c.Set(ctx, "t1", ec, "update", &doorman.Decision{Allowed: true})
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(ctx, "t1", ec, "update"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateTenant(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	ec := execCtx("u1", "projects", "update")
	c.Set(ctx, "t1", ec, "update", &doorman.Decision{Allowed: true})
	c.Set(ctx, "t2", ec, "update", &doorman.Decision{Allowed: true})

	c.InvalidateTenant(ctx, "t1")

	if _, ok := c.Get(ctx, "t1", ec, "update"); ok {
		t.Fatal("expected t1's decisions invalidated")
	}
	if _, ok := c.Get(ctx, "t2", ec, "update"); !ok {
		t.Fatal("expected t2's decisions intact")
	}
}

func TestMemoryCacheInvalidateIdentity(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	u1 := execCtx("u1", "projects", "update")
	u2 := execCtx("u2", "projects", "update")
	c.Set(ctx, "t1", u1, "update", &doorman.Decision{Allowed: true})
	c.Set(ctx, "t1", u2, "update", &doorman.Decision{Allowed: true})
	c.Set(ctx, "t2", u1, "update", &doorman.Decision{Allowed: true})

	c.InvalidateIdentity(ctx, "t1", doorman.IdentityUser, "u1")

	if _, ok := c.Get(ctx, "t1", u1, "update"); ok {
		t.Fatal("expected u1's decisions invalidated for t1")
	}
	if _, ok := c.Get(ctx, "t1", u2, "update"); !ok {
		t.Fatal("expected u2's decisions intact")
	}
	if _, ok := c.Get(ctx, "t2", u1, "update"); !ok {
		t.Fatal("expected u1's decisions under t2 intact")
	}
}

func TestMemoryCacheMaxSizeEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute), WithMaxSize(2))

	c.Set(ctx, "t1", execCtx("u1", "projects", "update"), "update", &doorman.Decision{})
	c.Set(ctx, "t1", execCtx("u2", "projects", "update"), "update", &doorman.Decision{})
	c.Set(ctx, "t1", execCtx("u3", "projects", "update"), "update", &doorman.Decision{})

	if len(c.entries) > 2 {
		t.Fatalf("expected at most 2 entries, got %d", len(c.entries))
	}
}
