package prefixgraph

import (
	"testing"

	"github.com/coregx/tokendfa/byteautomaton"
	"github.com/coregx/tokendfa/vocab"
)

func cls(vals ...int) []byteautomaton.Class {
	out := make([]byteautomaton.Class, len(vals))
	for i, v := range vals {
		out[i] = byteautomaton.Class(v)
	}
	return out
}

func TestBuilderCoalescesEqualClassSequences(t *testing.T) {
	b := NewBuilder()
	b.Insert(cls(1, 2), vocab.TokenID(10))
	b.Insert(cls(1, 2), vocab.TokenID(20))
	forest := b.Build()

	if len(forest.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(forest.Roots))
	}
	leaf := forest.Roots[0].Children[0]
	if len(leaf.TokenIDs) != 2 {
		t.Fatalf("expected both token ids on the shared node, got %v", leaf.TokenIDs)
	}
}

func TestBuilderDisjointRoots(t *testing.T) {
	b := NewBuilder()
	b.Insert(cls(1, 2), vocab.TokenID(1))
	b.Insert(cls(3, 4), vocab.TokenID(2))
	forest := b.Build()

	if len(forest.Roots) != 2 {
		t.Fatalf("expected 2 disjoint roots, got %d", len(forest.Roots))
	}
	if forest.Roots[0].Class >= forest.Roots[1].Class {
		t.Fatal("roots should be sorted by class")
	}
}

func TestBuilderSharedPrefix(t *testing.T) {
	b := NewBuilder()
	b.Insert(cls(1, 2), vocab.TokenID(1))
	b.Insert(cls(1, 2, 3), vocab.TokenID(2))
	forest := b.Build()

	if len(forest.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(forest.Roots))
	}
	mid := forest.Roots[0].Children[0]
	if len(mid.TokenIDs) != 1 || mid.TokenIDs[0] != 1 {
		t.Fatalf("expected token 1 to terminate at the shared prefix node, got %v", mid.TokenIDs)
	}
	if len(mid.Children) != 1 {
		t.Fatalf("expected one extension of the shared prefix, got %d", len(mid.Children))
	}
	leaf := mid.Children[0]
	if len(leaf.TokenIDs) != 1 || leaf.TokenIDs[0] != 2 {
		t.Fatalf("expected token 2 at the leaf, got %v", leaf.TokenIDs)
	}
}

func TestIteratorAcceptAndReject(t *testing.T) {
	b := NewBuilder()
	b.Insert(cls(1, 2), vocab.TokenID(1))
	b.Insert(cls(1, 3), vocab.TokenID(2))
	forest := b.Build()

	it := NewIterator(forest.Roots[0])
	var visited []byteautomaton.Class
	for it.Current() != nil {
		visited = append(visited, it.Current().Class)
		if it.Current().Class == 1 {
			it.AcceptAndAdvance()
		} else {
			it.RejectAndAdvance()
		}
	}
	if len(visited) != 3 {
		t.Fatalf("expected to visit root plus both children, got %v", visited)
	}
}

func TestIteratorRejectPrunesSubtree(t *testing.T) {
	b := NewBuilder()
	b.Insert(cls(1, 2, 9), vocab.TokenID(1))
	forest := b.Build()

	it := NewIterator(forest.Roots[0])
	it.RejectAndAdvance() // reject the root immediately
	if it.Current() != nil {
		t.Fatal("rejecting the root should abandon the whole subtree")
	}
}
