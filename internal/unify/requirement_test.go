package unify

import (
	"testing"
)

func TestParseRequirement_terms(t *testing.T) {
	req, err := ParseRequirement(">=1.0, <2.0")
	if err != nil {
		t.Fatal(err)
	}
	terms := req.Terms()
	if len(terms) != 2 || terms[0] != ">=1.0" || terms[1] != "<2.0" {
		t.Errorf("terms = %v", terms)
	}
}

func TestParseRequirement_invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "nonsense", "1.0,,bad"} {
		if _, err := ParseRequirement(raw); err == nil {
			t.Errorf("ParseRequirement(%q): expected error", raw)
		}
	}
}

func TestDedup_orderPreserving(t *testing.T) {
	req, err := ParseRequirement("2.0, 1.0, 2.0, 1.0")
	if err != nil {
		t.Fatal(err)
	}
	got := req.Dedup().String()
	if got != "2.0, 1.0" {
		t.Errorf("dedup = %q, want first occurrences in order", got)
	}
}

func TestDedup_ignoresInteriorWhitespace(t *testing.T) {
	req, err := ParseRequirement(">= 1.0, >=1.0")
	if err != nil {
		t.Fatal(err)
	}
	deduped := req.Dedup()
	if len(deduped.Terms()) != 1 {
		t.Errorf("terms = %v, want a single comparator", deduped.Terms())
	}
	if deduped.String() != ">= 1.0" {
		t.Errorf("dedup = %q, want the first spelling kept", deduped.String())
	}
}

func TestDedup_cardinality(t *testing.T) {
	req, err := ParseRequirement("1.0.0, 1.0.0, 1.9.0")
	if err != nil {
		t.Fatal(err)
	}
	if n := len(req.Dedup().Terms()); n != 2 {
		t.Errorf("distinct comparators = %d, want 2", n)
	}
}
