// Package tokendfa builds and serves a token-level deterministic
// automaton over a regular expression and a vocabulary: the set of
// vocabulary tokens a constrained decoder may emit next, at every point
// along generation, without ever producing a token sequence the regex
// would reject.
package tokendfa

import (
	"errors"

	"github.com/coregx/tokendfa/byteautomaton"
	"github.com/coregx/tokendfa/mute"
	"github.com/coregx/tokendfa/prefixgraph"
	"github.com/coregx/tokendfa/transitions"
	"github.com/coregx/tokendfa/vocab"
)

// TokensDFA is a built token-level automaton: which vocabulary tokens are
// legal from each state, and which states are themselves final (valid
// places for generation to stop before end-of-sequence).
type TokensDFA struct {
	eos         vocab.TokenID
	start       transitions.StateID
	sink        transitions.StateID
	finalStates []transitions.StateID
	vocabSize   int
	table       *transitions.Table
	warnings    []string
}

// Build compiles pattern, mutes its coverable literals against
// vocabulary's tokens, determinizes the resulting byte DFA, prunes
// vocabulary tokens no live byte class can produce, and walks the
// surviving tokens' prefix graph against every reachable byte-DFA state
// to populate the transition table.
func Build(pattern string, vocabulary *vocab.Vocabulary, cfg Config) (*TokensDFA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	effectivePattern := pattern
	effectiveVocab := vocabulary
	var ghostBindings []transitions.GhostBinding
	var warnings []string

	if cfg.MuteLiterals {
		muted, err := mute.Mute(pattern, vocabulary, cfg.GhostPrefixFallbacks)
		if err != nil {
			kind := InvalidRegex
			if errors.Is(err, mute.ErrAlphabetExhausted) {
				kind = AlphabetExhausted
			}
			return nil, &BuildError{Kind: kind, Message: "muting literals", Cause: err}
		}
		effectivePattern = muted.Pattern
		warnings = muted.Warnings
		if len(muted.Ghosts) > 0 {
			ghostBytes := make([][]byte, len(muted.Ghosts))
			for i, g := range muted.Ghosts {
				ghostBytes[i] = g.Bytes
			}
			extended, ghostIDs, err := vocab.Extend(vocabulary, ghostBytes)
			if err != nil {
				return nil, &BuildError{Kind: InvalidVocabulary, Message: "extending vocabulary with ghost tokens", Cause: err}
			}
			effectiveVocab = extended
			ghostBindings = make([]transitions.GhostBinding, len(muted.Ghosts))
			for i, g := range muted.Ghosts {
				ghostBindings[i] = transitions.GhostBinding{Ghost: ghostIDs[i], Real: g.RealID}
			}
		}
	}

	dfa, err := byteautomaton.Compile(effectivePattern)
	if err != nil {
		return nil, &BuildError{Kind: InvalidRegex, Message: "compiling the muted pattern", Cause: err}
	}

	var finalStates []transitions.StateID
	for _, s := range dfa.States() {
		if dfa.IsFinal(s) {
			finalStates = append(finalStates, s)
		}
	}
	if len(finalStates) == 0 {
		return nil, ErrEmptyLanguage
	}

	survivors := surviveDeadClasses(dfa, effectiveVocab, cfg.PruneDeadClasses)

	builder := prefixgraph.NewBuilder()
	classes := dfa.Classes()
	for _, tok := range survivors {
		builder.Insert(encodeClassSeq(classes, effectiveVocab.Bytes(tok)), tok)
	}
	forest := builder.Build()

	sink := transitions.StateID(dfa.NumStates())
	table, err := buildTransitions(dfa, forest, effectiveVocab.EOS(), sink, effectiveVocab.Size(), cfg.Workers)
	if err != nil {
		return nil, &BuildError{Kind: TransitionConflict, Message: "walking the prefix graph against the byte DFA", Cause: err}
	}
	table.Reduce(ghostBindings)
	table.Finalize()

	return &TokensDFA{
		eos:         effectiveVocab.EOS(),
		start:       dfa.Start(),
		sink:        sink,
		finalStates: finalStates,
		vocabSize:   effectiveVocab.Size(),
		table:       table,
		warnings:    warnings,
	}, nil
}

// surviveDeadClasses returns every non-EOS token id whose byte encoding
// lies entirely within live byte classes, or every non-EOS token id
// unfiltered when prune is false.
func surviveDeadClasses(dfa *byteautomaton.DFA, vocabulary *vocab.Vocabulary, prune bool) []vocab.TokenID {
	var dead map[byteautomaton.Class]bool
	if prune {
		dead = byteautomaton.DeadClasses(dfa)
	}
	classes := dfa.Classes()

	var survivors []vocab.TokenID
	vocabulary.Tokens(func(id vocab.TokenID, b []byte) bool {
		if id == vocabulary.EOS() {
			return true
		}
		if dead != nil {
			for _, by := range b {
				if dead[classes.Get(by)] {
					return true
				}
			}
		}
		survivors = append(survivors, id)
		return true
	})
	return survivors
}

func encodeClassSeq(classes *byteautomaton.ByteClasses, b []byte) []byteautomaton.Class {
	seq := make([]byteautomaton.Class, len(b))
	for i, by := range b {
		seq[i] = classes.Get(by)
	}
	return seq
}

// EOS returns the end-of-sequence token id.
func (d *TokensDFA) EOS() vocab.TokenID { return d.eos }

// Start returns the automaton's start state.
func (d *TokensDFA) Start() transitions.StateID { return d.start }

// FinalStates returns the byte-DFA states at which generation may
// legally stop (the states eos is accepted from).
func (d *TokensDFA) FinalStates() []transitions.StateID {
	out := make([]transitions.StateID, len(d.finalStates))
	copy(out, d.finalStates)
	return out
}

// VocabSize returns the size of the vocabulary the automaton was built
// against, including any ghost tokens literal muting introduced.
func (d *TokensDFA) VocabSize() int { return d.vocabSize }

// Table returns the automaton's transition table.
func (d *TokensDFA) Table() *transitions.Table { return d.table }

// Warnings returns the literal runs Build found but could not mute
// because no sequence of vocabulary tokens covers them exactly. This is
// diagnostic, never an error: an un-muted literal is still walked and
// matched token-by-token like any other part of the pattern.
func (d *TokensDFA) Warnings() []string {
	out := make([]string, len(d.warnings))
	copy(out, d.warnings)
	return out
}

// NewGuide returns a Guide positioned at the automaton's start state.
func (d *TokensDFA) NewGuide() *Guide {
	return &Guide{dfa: d, current: d.start}
}
