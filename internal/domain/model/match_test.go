package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestOrderedPairIsIndependentOfArgumentOrder(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	b := uuid.MustParse("00000000-0000-0000-0000-0000000000bb")

	x1, y1 := OrderedPair(a, b)
	x2, y2 := OrderedPair(b, a)
	if x1 != a || y1 != b {
		t.Fatalf("unexpected order: got (%s, %s)", x1, y1)
	}
	if x1 != x2 || y1 != y2 {
		t.Fatalf("pair order depends on arguments: (%s, %s) vs (%s, %s)", x1, y1, x2, y2)
	}
}

func TestMatchCounterpart(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	m := Match{User1ID: a, User2ID: b}

	if got := m.Counterpart(a); got != b {
		t.Fatalf("unexpected counterpart for user1: %s", got)
	}
	if got := m.Counterpart(b); got != a {
		t.Fatalf("unexpected counterpart for user2: %s", got)
	}
	if m.Has(uuid.New()) {
		t.Fatalf("stranger must not be part of the match")
	}
}
