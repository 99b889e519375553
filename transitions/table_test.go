package transitions

import (
	"testing"

	"github.com/coregx/tokendfa/vocab"
)

func TestInsertAndFinalizeNextState(t *testing.T) {
	tbl := NewTable(4, 2)
	if err := tbl.Insert(0, vocab.TokenID(1), 1); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	tbl.Finalize()

	next, ok := tbl.NextState(0, vocab.TokenID(1))
	if !ok || next != 1 {
		t.Fatalf("NextState(0,1) = (%d,%v), want (1,true)", next, ok)
	}
	if _, ok := tbl.NextState(0, vocab.TokenID(2)); ok {
		t.Fatal("NextState(0,2) should not exist")
	}
}

func TestInsertIdempotent(t *testing.T) {
	tbl := NewTable(4, 2)
	if err := tbl.Insert(0, vocab.TokenID(1), 1); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tbl.Insert(0, vocab.TokenID(1), 1); err != nil {
		t.Fatalf("repeated identical Insert should be a no-op, got %v", err)
	}
}

func TestInsertConflict(t *testing.T) {
	tbl := NewTable(4, 2)
	if err := tbl.Insert(0, vocab.TokenID(1), 1); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := tbl.Insert(0, vocab.TokenID(1), 0)
	if err == nil {
		t.Fatal("expected a ConflictError for a contradictory destination")
	}
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
}

func TestAllowedMaskAndTokens(t *testing.T) {
	tbl := NewTable(70, 1)
	_ = tbl.Insert(0, vocab.TokenID(1), 0)
	_ = tbl.Insert(0, vocab.TokenID(65), 0)
	tbl.Finalize()

	mask := tbl.AllowedMask(0)
	if len(mask) != 2 {
		t.Fatalf("expected a 2-word mask for 70 tokens, got %d words", len(mask))
	}
	if mask[0]&(1<<1) == 0 {
		t.Fatal("bit for token 1 should be set in word 0")
	}
	if mask[1]&(1<<1) == 0 {
		t.Fatal("bit for token 65 should be set in word 1")
	}

	got := tbl.AllowedTokens(0, nil)
	want := []vocab.TokenID{1, 65}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("AllowedTokens = %v, want %v", got, want)
	}
}

func TestReduceGhostWinsOverReal(t *testing.T) {
	tbl := NewTable(4, 1)
	real := vocab.TokenID(1)
	ghost := vocab.TokenID(100)

	_ = tbl.Insert(0, real, 0)    // the un-muted real token loops in place
	_ = tbl.Insert(0, ghost, 2)   // the ghost standing in for it advances to state 2

	tbl.Reduce([]GhostBinding{{Ghost: ghost, Real: real}})
	tbl.Finalize()

	next, ok := tbl.NextState(0, real)
	if !ok || next != 2 {
		t.Fatalf("NextState(0,real) = (%d,%v), want (2,true): ghost destination must win", next, ok)
	}
	if _, ok := tbl.NextState(0, ghost); ok {
		t.Fatal("the ghost id itself should not survive reduction")
	}
}

func TestReduceWithNoConflictingReal(t *testing.T) {
	tbl := NewTable(4, 1)
	ghost := vocab.TokenID(100)
	real := vocab.TokenID(1)

	_ = tbl.Insert(0, ghost, 3)
	tbl.Reduce([]GhostBinding{{Ghost: ghost, Real: real}})
	tbl.Finalize()

	next, ok := tbl.NextState(0, real)
	if !ok || next != 3 {
		t.Fatalf("NextState(0,real) = (%d,%v), want (3,true)", next, ok)
	}
}
