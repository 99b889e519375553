package mute

import (
	"errors"
	"fmt"
	"math"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/tokendfa/byteautomaton"
	"github.com/coregx/tokendfa/vocab"
)

// DefaultGhostPrefix is the first byte of a ghost token, chosen because it
// sits in the C0 control range no realistic pattern's literal alphabet
// reaches. FallbackGhostPrefixes are tried in order when the pattern's own
// live-byte set happens to claim the default.
var (
	DefaultGhostPrefix    byte = 0x1C
	FallbackGhostPrefixes      = []byte{0x1D, 0x1E, 0x1F}
)

// ErrAlphabetExhausted is returned by Mute when every candidate ghost
// prefix byte (default plus fallbacks) collides with a byte the pattern's
// grammar can actually produce, leaving no unambiguous placeholder to mute
// literals with.
var ErrAlphabetExhausted = errors.New("mute: no ghost prefix byte is free of the pattern's live byte set")

// GhostToken is a synthetic vocabulary entry substituted for one real
// token that participates in a literal's decomposition. Its Bytes never
// appear in real input; RealID is the token the guide must report once
// this ghost is chosen during generation.
type GhostToken struct {
	Bytes  []byte
	RealID vocab.TokenID
}

// MutedList is the result of muting a pattern's literal runs: the
// rewritten pattern with each coverable literal replaced by a
// parenthesized run of ghost tokens, the ghost tokens themselves, and the
// set of real token ids any ghost stands in for. Warnings names every
// literal run found but left untouched because no sequence of vocabulary
// tokens covers it exactly — this is never a build failure.
type MutedList struct {
	Pattern  string
	Ghosts   []GhostToken
	Muted    map[vocab.TokenID]bool
	Warnings []string
}

// Mute finds every alphanumeric literal run in pattern that some sequence
// of vocabulary tokens covers exactly, and replaces each with ghost-token
// placeholders bound to that covering sequence. A literal with no full
// covering is left untouched. fallbacks is the ordered set of alternative
// ghost prefix bytes tried after DefaultGhostPrefix; a nil fallbacks uses
// FallbackGhostPrefixes.
func Mute(pattern string, vocabulary *vocab.Vocabulary, fallbacks []byte) (*MutedList, error) {
	literals := extractLiterals(pattern)
	if len(literals) == 0 {
		return &MutedList{Pattern: pattern, Muted: map[vocab.TokenID]bool{}}, nil
	}

	byBytes := make(map[string][]vocab.TokenID)
	builder := ahocorasick.NewBuilder()
	vocabulary.Tokens(func(id vocab.TokenID, b []byte) bool {
		if id == vocabulary.EOS() {
			return true
		}
		byBytes[string(b)] = append(byBytes[string(b)], id)
		return true
	})
	for tok := range byBytes {
		builder.AddPattern([]byte(tok))
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("mute: building fast-reject automaton: %w", err)
	}

	type decomposition struct {
		literal literalMatch
		pieces  []tokenPiece
	}
	var decompositions []decomposition
	var warnings []string
	for _, lit := range literals {
		if !automaton.IsMatch([]byte(lit.Literal)) {
			warnings = append(warnings, lit.Literal)
			continue
		}
		pieces, ok := decomposeLiteral(lit.Literal, byBytes)
		if !ok {
			warnings = append(warnings, lit.Literal)
			continue
		}
		decompositions = append(decompositions, decomposition{literal: lit, pieces: pieces})
	}

	if len(decompositions) == 0 {
		return &MutedList{Pattern: pattern, Muted: map[vocab.TokenID]bool{}, Warnings: warnings}, nil
	}

	if fallbacks == nil {
		fallbacks = FallbackGhostPrefixes
	}
	prefix, err := selectGhostPrefix(pattern, fallbacks)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, d := range decompositions {
		for _, piece := range d.pieces {
			total += len(piece.IDs)
		}
	}
	width := 0
	if total > 1 {
		width = int(math.Ceil(math.Log10(float64(total))))
	}

	muted := make(map[vocab.TokenID]bool)
	var ghosts []GhostToken
	var replacements []literalReplacement

	index := 1
	for _, d := range decompositions {
		var replacement []byte
		replacement = append(replacement, '(')
		for _, piece := range d.pieces {
			for _, id := range piece.IDs {
				ghostBytes := []byte{prefix}
				ghostBytes = append(ghostBytes, []byte(fmt.Sprintf("%0*d", width, index))...)
				ghosts = append(ghosts, GhostToken{Bytes: ghostBytes, RealID: id})
				muted[id] = true
				replacement = append(replacement, ghostBytes...)
				index++
			}
		}
		replacement = append(replacement, ')')
		replacements = append(replacements, literalReplacement{
			Original:    d.literal.Literal,
			Replacement: string(replacement),
			Positions:   d.literal.Positions,
		})
	}

	newPattern := replaceLiterals(pattern, replacements)
	return &MutedList{Pattern: newPattern, Ghosts: ghosts, Muted: muted, Warnings: warnings}, nil
}

// selectGhostPrefix picks the first candidate byte, in default-then-fallback
// order, that the pattern's grammar can never itself produce.
func selectGhostPrefix(pattern string, fallbacks []byte) (byte, error) {
	live, err := byteautomaton.LiveBytes(pattern)
	if err != nil {
		return 0, fmt.Errorf("mute: computing live bytes: %w", err)
	}
	if !live[DefaultGhostPrefix] {
		return DefaultGhostPrefix, nil
	}
	for _, b := range fallbacks {
		if !live[b] {
			return b, nil
		}
	}
	return 0, ErrAlphabetExhausted
}
