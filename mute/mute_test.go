package mute

import (
	"testing"

	"github.com/coregx/tokendfa/vocab"
)

func newTestVocab(tokens []string) (*vocab.Vocabulary, error) {
	raw := make([][]byte, len(tokens))
	for i, tok := range tokens {
		raw[i] = []byte(tok)
	}
	return vocab.New(raw, 0)
}

func TestMuteNoLiteralsLeavesPatternUnchanged(t *testing.T) {
	v, err := newTestVocab([]string{"<eos>", "a", "b"})
	if err != nil {
		t.Fatalf("newTestVocab: %v", err)
	}
	out, err := Mute(`^[a-z]+$`, v, nil)
	if err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if out.Pattern != `^[a-z]+$` {
		t.Fatalf("Pattern = %q, want unchanged", out.Pattern)
	}
	if len(out.Ghosts) != 0 {
		t.Fatalf("expected no ghosts, got %v", out.Ghosts)
	}
}

func TestMuteDecomposesCoverableLiteral(t *testing.T) {
	v, err := newTestVocab([]string{"<eos>", "file", "name", "-"})
	if err != nil {
		t.Fatalf("newTestVocab: %v", err)
	}
	out, err := Mute("file-name", v, nil)
	if err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if len(out.Ghosts) != 2 {
		t.Fatalf("expected 2 ghost tokens (one per literal word), got %d: %v", len(out.Ghosts), out.Ghosts)
	}
	for _, g := range out.Ghosts {
		if g.Bytes[0] != DefaultGhostPrefix {
			t.Fatalf("ghost token %v does not start with the default ghost prefix", g.Bytes)
		}
	}
	if len(out.Muted) != 2 {
		t.Fatalf("expected 2 muted real token ids, got %v", out.Muted)
	}
}

func TestMuteLeavesUncoverableLiteralAlone(t *testing.T) {
	v, err := newTestVocab([]string{"<eos>", "x", "y"})
	if err != nil {
		t.Fatalf("newTestVocab: %v", err)
	}
	out, err := Mute("unknownliteral", v, nil)
	if err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if out.Pattern != "unknownliteral" {
		t.Fatalf("Pattern = %q, want unchanged since no covering exists", out.Pattern)
	}
	if len(out.Warnings) != 1 || out.Warnings[0] != "unknownliteral" {
		t.Fatalf("Warnings = %v, want [\"unknownliteral\"]", out.Warnings)
	}
}

func TestMuteHonorsCallerSuppliedFallbacks(t *testing.T) {
	// The pattern's own alphabet claims both the default prefix and the
	// package's first default fallback, forcing selection onto a
	// caller-supplied fallback set instead.
	v, err := newTestVocab([]string{"<eos>", "file", "name"})
	if err != nil {
		t.Fatalf("newTestVocab: %v", err)
	}
	pattern := "file-name[\x1c\x1d]"
	out, err := Mute(pattern, v, []byte{0x1e})
	if err != nil {
		t.Fatalf("Mute: %v", err)
	}
	for _, g := range out.Ghosts {
		if g.Bytes[0] != 0x1e {
			t.Fatalf("ghost token %v should use the caller-supplied fallback 0x1e", g.Bytes)
		}
	}
}

func TestSelectGhostPrefixFallsBackWhenDefaultIsLive(t *testing.T) {
	// A pattern whose own alphabet contains the default ghost prefix byte
	// forces selection onto the fallback set.
	pattern := "^[\x1c]$"
	prefix, err := selectGhostPrefix(pattern, FallbackGhostPrefixes)
	if err != nil {
		t.Fatalf("selectGhostPrefix: %v", err)
	}
	if prefix == DefaultGhostPrefix {
		t.Fatalf("expected a fallback prefix, got the default")
	}
}
