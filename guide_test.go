package tokendfa

import "testing"

func TestGuideGetTokensWithMaskBuffer(t *testing.T) {
	v := testVocab(t, "<eos>", "a", "b")
	idx, err := Build("^a$", v, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	g := idx.NewGuide()

	buf := make([]byte, (idx.VocabSize()+7)/8)
	if list := g.GetTokens(buf); list != nil {
		t.Fatalf("GetTokens with a non-nil buffer should return nil, got %v", list)
	}

	tokA := findTokenID(t, v, "a")
	if buf[tokA/8]&(1<<(tokA%8)) == 0 {
		t.Fatal("mask buffer should have the bit for the allowed token set")
	}
	tokB := findTokenID(t, v, "b")
	if buf[tokB/8]&(1<<(tokB%8)) != 0 {
		t.Fatal("mask buffer should not have the bit for a disallowed token set")
	}
}

func TestGuideIsFinished(t *testing.T) {
	v := testVocab(t, "<eos>", "a")
	idx, err := Build("^a$", v, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	g := idx.NewGuide()
	if g.IsFinished() {
		t.Fatal("a fresh guide at the start state should not be finished")
	}
	tokA := findTokenID(t, v, "a")
	if _, err := g.Advance(tokA, nil); err != nil {
		t.Fatalf("Advance(a): %v", err)
	}
	if _, err := g.Advance(idx.EOS(), nil); err != nil {
		t.Fatalf("Advance(eos): %v", err)
	}
	if !g.IsFinished() {
		t.Fatal("guide should be finished after advancing past eos")
	}
	if _, err := g.Advance(tokA, nil); err == nil {
		t.Fatal("no token should be allowed once the guide is finished")
	}
}

func TestMultipleGuidesShareTable(t *testing.T) {
	v := testVocab(t, "<eos>", "a", "b")
	idx, err := Build("^[ab]$", v, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	g1 := idx.NewGuide()
	g2 := idx.NewGuide()

	tokA := findTokenID(t, v, "a")
	tokB := findTokenID(t, v, "b")

	if _, err := g1.Advance(tokA, nil); err != nil {
		t.Fatalf("g1.Advance(a): %v", err)
	}
	if g2.State() != idx.start {
		t.Fatal("advancing g1 must not move g2's independent cursor")
	}
	if _, err := g2.Advance(tokB, nil); err != nil {
		t.Fatalf("g2.Advance(b): %v", err)
	}
}
