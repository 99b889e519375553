package byteautomaton

import "fmt"

// stateID identifies a state in the intermediate Thompson construction.
// It never leaks outside this package — the public surface deals only in
// StateID, the byte-DFA's own state space.
type stateID uint32

const (
	invalidState stateID = 0xFFFFFFFF
	failState    stateID = 0xFFFFFFFE
)

type stateKind uint8

const (
	kindMatch stateKind = iota
	kindByteRange
	kindSparse
	kindSplit
	kindEpsilon
	kindFail
)

func (k stateKind) String() string {
	switch k {
	case kindMatch:
		return "Match"
	case kindByteRange:
		return "ByteRange"
	case kindSparse:
		return "Sparse"
	case kindSplit:
		return "Split"
	case kindEpsilon:
		return "Epsilon"
	case kindFail:
		return "Fail"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// nfaTransition is one byte range of a Sparse state (a character class).
type nfaTransition struct {
	Lo, Hi byte
	Next   stateID
}

// nfaState is a single state of the Thompson construction. Token matching
// never needs captures or look-around, so unlike a general-purpose regex
// engine this state shape only has to cover the handful of kinds a
// constrained-decoding grammar actually uses.
type nfaState struct {
	kind stateKind

	lo, hi byte
	next   stateID

	transitions []nfaTransition

	left, right stateID
}

func (s *nfaState) isMatch() bool { return s.kind == kindMatch }

// program is the result of compiling a pattern: a Thompson NFA plus the
// byte-class boundaries accumulated along the way. It is consumed exactly
// once, by the subset construction in dfa.go, then discarded.
type program struct {
	states      []nfaState
	start       stateID
	byteClasses ByteClasses
}

func (p *program) state(id stateID) *nfaState {
	if id == invalidState || int(id) >= len(p.states) {
		return nil
	}
	return &p.states[id]
}

func (p *program) isMatch(id stateID) bool {
	if s := p.state(id); s != nil {
		return s.isMatch()
	}
	return false
}
