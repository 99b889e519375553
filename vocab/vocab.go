// Package vocab holds the immutable token vocabulary a TokensDFA is built
// against: a dense id-to-bytes mapping plus a distinguished end-of-sequence
// id, in the spirit of lwch-tokenizer's Vocab type.
package vocab

import "errors"

// TokenID identifies a vocabulary entry. One value, returned by EOS, is the
// distinguished end-of-sequence token.
type TokenID uint32

// ErrEmptyToken is returned by New when a token's byte encoding is empty.
// An empty token would sit at every automaton state simultaneously and
// break the one-transition-per-(state,token) invariant, so it is rejected
// outright rather than special-cased downstream.
var ErrEmptyToken = errors.New("vocab: token has empty byte encoding")

// Vocabulary is an immutable mapping from TokenID to byte string, plus the
// id reserved for end-of-sequence.
type Vocabulary struct {
	bytes [][]byte // indexed by TokenID
	eos   TokenID
}

// New builds a Vocabulary from a dense id-to-bytes slice, where tokens[i]
// is the byte encoding of TokenID(i). eos must be a valid index into
// tokens. Every token is copied so later mutation of the caller's slices
// cannot reach back into the Vocabulary.
func New(tokens [][]byte, eos TokenID) (*Vocabulary, error) {
	if int(eos) >= len(tokens) {
		return nil, &InvalidVocabularyError{Reason: "eos token id out of range"}
	}
	bytes := make([][]byte, len(tokens))
	for i, t := range tokens {
		if len(t) == 0 {
			return nil, &InvalidVocabularyError{Reason: "empty token", TokenID: TokenID(i), Cause: ErrEmptyToken}
		}
		b := make([]byte, len(t))
		copy(b, t)
		bytes[i] = b
	}
	return &Vocabulary{bytes: bytes, eos: eos}, nil
}

// Size returns the number of tokens in the vocabulary, including EOS.
func (v *Vocabulary) Size() int { return len(v.bytes) }

// EOS returns the end-of-sequence token id.
func (v *Vocabulary) EOS() TokenID { return v.eos }

// Bytes returns the byte encoding of id. Returns nil if id is out of range.
func (v *Vocabulary) Bytes(id TokenID) []byte {
	if int(id) >= len(v.bytes) {
		return nil
	}
	return v.bytes[id]
}

// Tokens calls f for every (TokenID, bytes) pair in id order, stopping
// early if f returns false.
func (v *Vocabulary) Tokens(f func(TokenID, []byte) bool) {
	for i, b := range v.bytes {
		if !f(TokenID(i), b) {
			return
		}
	}
}

// Extend returns a new Vocabulary holding every token of base, unchanged
// ids and EOS, plus extra appended as freshly assigned contiguous ids
// starting at base.Size(). The returned ids correspond to extra in order,
// letting a caller that synthesized ghost tokens bind each one back to
// the id the extended vocabulary gave it.
func Extend(base *Vocabulary, extra [][]byte) (*Vocabulary, []TokenID, error) {
	all := make([][]byte, 0, base.Size()+len(extra))
	base.Tokens(func(_ TokenID, b []byte) bool {
		all = append(all, b)
		return true
	})
	firstNew := TokenID(len(all))
	all = append(all, extra...)

	ids := make([]TokenID, len(extra))
	for i := range extra {
		ids[i] = firstNew + TokenID(i)
	}

	extended, err := New(all, base.eos)
	if err != nil {
		return nil, nil, err
	}
	return extended, ids, nil
}

// InvalidVocabularyError reports why New rejected a candidate vocabulary.
type InvalidVocabularyError struct {
	Reason  string
	TokenID TokenID
	Cause   error
}

func (e *InvalidVocabularyError) Error() string {
	if e.Cause != nil {
		return "vocab: invalid vocabulary: " + e.Reason + ": " + e.Cause.Error()
	}
	return "vocab: invalid vocabulary: " + e.Reason
}

func (e *InvalidVocabularyError) Unwrap() error { return e.Cause }
