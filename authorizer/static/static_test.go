package static

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/doorman"
)

func alice() doorman.Identity {
	return doorman.Identity{Kind: doorman.IdentityUser, ID: "alice"}
}

func TestPermitExactGrant(t *testing.T) {
	az := New(Grant{
		IdentityKind: doorman.IdentityUser,
		IdentityID:   "alice",
		Privilege:    "projects:write",
		Context:      "projects",
	})

	ok, err := az.Permit(context.Background(), alice(), "projects:write", "projects", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected permit")
	}

	ok, _ = az.Permit(context.Background(), alice(), "projects:admin", "projects", nil, true)
	if ok {
		t.Fatal("expected deny for unheld privilege")
	}
}

func TestPermitGlobs(t *testing.T) {
	az := New(
		Grant{IdentityID: "alice", Privilege: "projects:*", Context: "projects"},
		Grant{IdentityID: "*", Privilege: "reports:view", Context: "reports"},
	)

	ok, _ := az.Permit(context.Background(), alice(), "projects:archive", "projects", nil, true)
	if !ok {
		t.Fatal("expected privilege glob to match")
	}

	bob := doorman.Identity{Kind: doorman.IdentityUser, ID: "bob"}
	ok, _ = az.Permit(context.Background(), bob, "reports:view", "reports", nil, true)
	if !ok {
		t.Fatal("expected identity glob to match")
	}
}

func TestPermitKindMismatch(t *testing.T) {
	az := New(Grant{
		IdentityKind: doorman.IdentityAPIKey,
		IdentityID:   "alice",
		Privilege:    "projects:write",
		Context:      "projects",
	})

	ok, _ := az.Permit(context.Background(), alice(), "projects:write", "projects", nil, true)
	if ok {
		t.Fatal("expected deny for wrong identity kind")
	}
}

func TestPermitCondition(t *testing.T) {
	az := New(Grant{
		IdentityID: "alice",
		Privilege:  "projects:write",
		Context:    "projects",
		Condition: func(identity doorman.Identity, object any) (bool, error) {
			p, ok := object.(map[string]any)
			if !ok {
				return false, nil
			}
			return p["owner"] == identity.ID, nil
		},
	})

	owned := map[string]any{"owner": "alice"}
	ok, err := az.Permit(context.Background(), alice(), "projects:write", "projects", owned, false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected permit for owned object")
	}

	foreign := map[string]any{"owner": "bob"}
	ok, _ = az.Permit(context.Background(), alice(), "projects:write", "projects", foreign, false)
	if ok {
		t.Fatal("expected deny for foreign object")
	}

	// Identity-only checks bypass the condition.
	ok, _ = az.Permit(context.Background(), alice(), "projects:write", "projects", nil, true)
	if !ok {
		t.Fatal("expected permit when attribute test is skipped")
	}
}

func TestPermitConditionError(t *testing.T) {
	boom := errors.New("boom")
	az := New(Grant{
		IdentityID: "alice",
		Privilege:  "projects:write",
		Context:    "projects",
		Condition: func(doorman.Identity, any) (bool, error) {
			return false, boom
		},
	})

	_, err := az.Permit(context.Background(), alice(), "projects:write", "projects", struct{}{}, false)
	if !errors.Is(err, boom) {
		t.Fatalf("expected condition error, got %v", err)
	}
}
