package tokendfa

import (
	"testing"

	"github.com/coregx/tokendfa/byteautomaton"
	"github.com/coregx/tokendfa/prefixgraph"
	"github.com/coregx/tokendfa/transitions"
	"github.com/coregx/tokendfa/vocab"
)

func TestBuildTransitionsWalksRealPattern(t *testing.T) {
	v := testVocab(t, "<eos>", "a", "b")
	dfa, err := byteautomaton.Compile("^ab$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	builder := prefixgraph.NewBuilder()
	classes := dfa.Classes()
	tokA := findTokenID(t, v, "a")
	tokB := findTokenID(t, v, "b")
	builder.Insert([]byteautomaton.Class{classes.Get('a')}, tokA)
	builder.Insert([]byteautomaton.Class{classes.Get('b')}, tokB)
	forest := builder.Build()

	sink := transitions.StateID(dfa.NumStates())
	table, err := buildTransitions(dfa, forest, v.EOS(), sink, v.Size(), 0)
	if err != nil {
		t.Fatalf("buildTransitions: %v", err)
	}
	table.Finalize()
	if _, ok := table.NextState(dfa.Start(), tokA); !ok {
		t.Fatal("expected a transition for \"a\" from the start state")
	}
}

// TestBuildTransitionsPropagatesConflict hand-builds a forest that violates
// the prefix graph's own invariant (two nodes claiming the same token id
// along paths that resolve to different destination states from the same
// byte-DFA state) to verify the merge's ConflictError surfaces instead of
// being discarded.
func TestBuildTransitionsPropagatesConflict(t *testing.T) {
	// "a" ends the match immediately; "bc" needs one more byte. Stepping
	// from the start state on the two branches' first byte therefore lands
	// on two genuinely different states (one final, one not) — exactly the
	// divergence a malformed forest needs to force a real conflict below.
	dfa, err := byteautomaton.Compile("^(a|bc)$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	classes := dfa.Classes()
	classA := classes.Get('a')
	classB := classes.Get('b')
	start := dfa.Start()
	destA := dfa.Step(start, classA)
	destB := dfa.Step(start, classB)
	if destA == destB {
		t.Skip("pattern's determinization did not separate the two branches; cannot force a conflict this way")
	}

	const conflicting vocab.TokenID = 99
	forest := &prefixgraph.Forest{Roots: []*prefixgraph.Node{
		{Class: classA, TokenIDs: []vocab.TokenID{conflicting}},
		{Class: classB, TokenIDs: []vocab.TokenID{conflicting}},
	}}

	sink := transitions.StateID(dfa.NumStates())
	if _, err := buildTransitions(dfa, forest, 0, sink, 100, 1); err == nil {
		t.Fatal("expected a ConflictError when one token id resolves to two destinations from the same state")
	} else if _, ok := err.(*transitions.ConflictError); !ok {
		t.Fatalf("expected a *transitions.ConflictError, got %T: %v", err, err)
	}
}
