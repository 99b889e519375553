package tokendfa

import (
	"github.com/coregx/tokendfa/transitions"
	"github.com/coregx/tokendfa/vocab"
)

// Guide is a single-threaded cursor over a TokensDFA's transition table.
// Many guides may share the same TokensDFA concurrently with no
// synchronization, since the table never mutates once Build returns it.
type Guide struct {
	dfa     *TokensDFA
	current transitions.StateID
}

// State returns the guide's current automaton state.
func (g *Guide) State() transitions.StateID { return g.current }

// IsFinished reports whether the guide's current state is the synthetic
// accept sink every eos transition leads to — no further tokens are ever
// allowed from it.
func (g *Guide) IsFinished() bool { return g.current == g.dfa.sink }

// GetTokens returns the tokens allowed from the guide's current state.
// If buf is non-nil it must be at least ceil(VocabSize/8) bytes; it is
// overwritten with the current allowed bitmask and GetTokens returns nil.
// If buf is nil, GetTokens returns a freshly allocated list of allowed
// token ids instead.
func (g *Guide) GetTokens(buf []byte) []vocab.TokenID {
	if buf != nil {
		writeMaskBytes(buf, g.dfa.table.AllowedMask(g.current))
		return nil
	}
	return g.dfa.table.AllowedTokens(g.current, nil)
}

// Advance consults the transition table for (current, tokenID). If no
// such transition exists it returns a *GuideError with Kind
// RejectedTransition and leaves the cursor unchanged. Otherwise it moves
// the cursor and returns the newly allowed tokens exactly as GetTokens
// would after the move.
func (g *Guide) Advance(tokenID vocab.TokenID, buf []byte) ([]vocab.TokenID, error) {
	next, ok := g.dfa.table.NextState(g.current, tokenID)
	if !ok {
		return nil, ErrRejectedTransition
	}
	g.current = next
	return g.GetTokens(buf), nil
}

// writeMaskBytes copies mask's 64-bit words into dst in little-endian
// byte order, zeroing any trailing bytes mask has no word for. dst is
// the caller-owned byte-granularity buffer the external guide surface
// promises; mask is the table's internal word-aligned representation.
func writeMaskBytes(dst []byte, mask []uint64) {
	for i := range dst {
		dst[i] = 0
	}
	for w, word := range mask {
		base := w * 8
		if base >= len(dst) {
			return
		}
		for b := 0; b < 8 && base+b < len(dst); b++ {
			dst[base+b] = byte(word >> (8 * b))
		}
	}
}
