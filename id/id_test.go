package id

import "testing"

func TestNewAndParseRoundTrip(t *testing.T) {
	rid := NewRuleID()
	if rid.IsNil() {
		t.Fatal("expected a valid ID")
	}
	if rid.Prefix() != PrefixRule {
		t.Fatalf("expected rule prefix, got %q", rid.Prefix())
	}

	parsed, err := Parse(rid.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed.String() != rid.String() {
		t.Fatalf("round trip mismatch: %s != %s", parsed, rid)
	}
}

func TestParseWithPrefixRejectsWrongPrefix(t *testing.T) {
	dlid := NewDecisionLogID()
	if _, err := ParseRuleID(dlid.String()); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
	if _, err := ParseDecisionLogID(dlid.String()); err != nil {
		t.Fatalf("expected dlog prefix to parse, got %v", err)
	}
}

func TestParseEmptyString(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	if !Nil.IsNil() {
		t.Fatal("Nil must report IsNil")
	}
	if Nil.String() != "" {
		t.Fatal("Nil must stringify to empty")
	}
	v, err := Nil.Value()
	if err != nil || v != nil {
		t.Fatalf("Nil must store as NULL, got %v, %v", v, err)
	}
}

func TestTextMarshalRoundTrip(t *testing.T) {
	rid := NewRuleID()
	data, err := rid.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var out ID
	if err := out.UnmarshalText(data); err != nil {
		t.Fatal(err)
	}
	if out.String() != rid.String() {
		t.Fatal("text round trip mismatch")
	}
}

func TestScan(t *testing.T) {
	rid := NewRuleID()

	var fromString ID
	if err := fromString.Scan(rid.String()); err != nil {
		t.Fatal(err)
	}
	if fromString.String() != rid.String() {
		t.Fatal("scan string mismatch")
	}

	var fromNil ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if !fromNil.IsNil() {
		t.Fatal("scan nil must produce Nil")
	}

	var fromInt ID
	if err := fromInt.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}
