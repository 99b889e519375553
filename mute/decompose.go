package mute

import "github.com/coregx/tokendfa/vocab"

// tokenPiece is one vocabulary token participating in a literal's minimal
// decomposition: its byte string plus every token id that shares that byte
// string (a vocabulary may map several ids onto the same bytes).
type tokenPiece struct {
	Bytes []byte
	IDs   []vocab.TokenID
}

// decomposeLiteral finds the minimum-cardinality sequence of vocabulary
// tokens whose concatenation equals literal, via a shortest-path dynamic
// program over byte positions. dp[i] holds the fewest tokens needed to
// cover literal[i:] together with the length of the token chosen to start
// that cover. The DP runs backward from the end of the literal so that, at
// each position, the token just chosen really is the earliest element of
// the final sequence still undecided — which is what lets a tie in token
// count be broken by preferring the longer token at that position: two
// candidate lengths at the same position can never themselves tie (they
// select different substrings), so whichever is longer already decides the
// lexicographic-on-descending-length-sequence comparison outright, with no
// need to inspect the rest of the cover. Returns ok=false if no full
// covering exists, in which case the literal is left untouched by the
// caller.
func decomposeLiteral(literal string, byBytes map[string][]vocab.TokenID) ([]tokenPiece, bool) {
	n := len(literal)
	type cell struct {
		count     int
		chosenLen int
		set       bool
	}
	dp := make([]cell, n+1)
	dp[n] = cell{count: 0, set: true}

	for i := n - 1; i >= 0; i-- {
		var best cell
		maxLen := n - i
		for length := 1; length <= maxLen; length++ {
			candidate := literal[i : i+length]
			if _, ok := byBytes[candidate]; !ok {
				continue
			}
			next := dp[i+length]
			if !next.set {
				continue
			}
			count := next.count + 1
			if !best.set || count < best.count || (count == best.count && length > best.chosenLen) {
				best = cell{count: count, chosenLen: length, set: true}
			}
		}
		dp[i] = best
	}

	if !dp[0].set {
		return nil, false
	}

	var out []tokenPiece
	pos := 0
	for pos < n {
		length := dp[pos].chosenLen
		tokenBytes := literal[pos : pos+length]
		out = append(out, tokenPiece{Bytes: []byte(tokenBytes), IDs: byBytes[tokenBytes]})
		pos += length
	}
	return out, true
}
