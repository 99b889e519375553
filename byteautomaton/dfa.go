package byteautomaton

import (
	"hash/fnv"
	"sort"

	"github.com/coregx/tokendfa/internal/conv"
	"github.com/coregx/tokendfa/internal/sparse"
)

// StateID identifies a state of the byte-level DFA. It is reused, unchanged,
// as the state id of the token-level automaton built on top of it.
type StateID uint32

const (
	// InvalidState is never a real state id.
	InvalidState StateID = 0xFFFFFFFF

	// DeadState is the sentinel returned by Step when no transition
	// survives determinization. A dead state accepts no further input and
	// reaches no final state.
	DeadState StateID = 0xFFFFFFFE

	// StartState is always state 0, by construction below.
	StartState StateID = 0
)

// DFA is a byte-level deterministic automaton, exhaustively determinized
// from a regexp/syntax pattern. Unlike the lazy, on-demand determinization
// a general-purpose regex engine wants, token-index construction needs the
// complete reachable state set up front — C4/C5 walk every state — so
// Compile runs the subset construction to a fixed point immediately instead
// of caching states as a search happens to visit them.
type DFA struct {
	classes     ByteClasses
	numClasses  int
	start       StateID
	final       []bool
	transitions [][]StateID // transitions[state][class] -> StateID or DeadState
}

// Compile parses pattern and builds its byte-level DFA.
func Compile(pattern string, opts ...CompileOption) (*DFA, error) {
	prog, err := compileProgram(pattern, opts...)
	if err != nil {
		return nil, err
	}
	return determinize(prog), nil
}

// determinize runs subset construction to a fixed point: every state
// reachable from the start's epsilon-closure is materialized, not just
// the ones a particular search would touch.
func determinize(prog *program) *DFA {
	classes := prog.byteClasses
	numClasses := classes.AlphabetLen()
	reps := classes.Representatives()

	byKey := make(map[uint64]StateID)
	var frontier [][]stateID

	startSet := epsilonClosure(prog, []stateID{prog.start})
	byKey[hashStateSet(startSet)] = StartState
	frontier = append(frontier, startSet)

	transitions := make([][]StateID, 0, 64)
	final := make([]bool, 0, 64)

	for i := 0; i < len(frontier); i++ {
		set := frontier[i]
		row := make([]StateID, numClasses)
		for _, rep := range reps {
			class := classes.Get(rep)
			targetSet := move(prog, set, rep)
			if len(targetSet) == 0 {
				row[class] = DeadState
				continue
			}
			key := hashStateSet(targetSet)
			id, ok := byKey[key]
			if !ok {
				id = StateID(len(frontier))
				byKey[key] = id
				frontier = append(frontier, targetSet)
			}
			row[class] = id
		}
		transitions = append(transitions, row)
		final = append(final, containsMatch(prog, set))
	}

	return &DFA{
		classes:     classes,
		numClasses:  numClasses,
		start:       StartState,
		final:       final,
		transitions: transitions,
	}
}

// Start returns the automaton's start state.
func (d *DFA) Start() StateID { return d.start }

// IsFinal reports whether s is an accepting state.
func (d *DFA) IsFinal(s StateID) bool {
	if int(s) >= len(d.final) {
		return false
	}
	return d.final[s]
}

// IsDead reports whether s is the synthetic dead-state sentinel. Real
// states are never dead; Step returns DeadState to signal "no transition".
func (d *DFA) IsDead(s StateID) bool { return s == DeadState }

// Classes returns the byte-equivalence-class partition this DFA was built
// with.
func (d *DFA) Classes() *ByteClasses { return &d.classes }

// Step returns the state reached from s on byte class c, or DeadState if
// none exists.
func (d *DFA) Step(s StateID, c Class) StateID {
	if int(s) >= len(d.transitions) {
		return DeadState
	}
	return d.transitions[s][c]
}

// States returns every reachable state, in the BFS order they were
// discovered during determinization (state 0 is always Start).
func (d *DFA) States() []StateID {
	out := make([]StateID, len(d.transitions))
	for i := range out {
		out[i] = StateID(i)
	}
	return out
}

// NumStates returns the number of reachable states.
func (d *DFA) NumStates() int { return len(d.transitions) }

// epsilonClosure returns every nfa state reachable from states via
// epsilon/split edges, as a canonically sorted slice — adapted from the
// teacher's lazy-DFA builder, but called eagerly against the full reachable
// frontier rather than once per live search step.
func epsilonClosure(prog *program, states []stateID) []stateID {
	seen := sparse.New(len(prog.states))
	stack := make([]stateID, 0, len(states)*2)

	for _, sid := range states {
		if seen.Insert(uint32(sid)) {
			stack = append(stack, sid)
		}
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s := prog.state(cur)
		if s == nil {
			continue
		}
		switch s.kind {
		case kindEpsilon:
			if s.next != invalidState && seen.Insert(uint32(s.next)) {
				stack = append(stack, s.next)
			}
		case kindSplit:
			if s.left != invalidState && seen.Insert(uint32(s.left)) {
				stack = append(stack, s.left)
			}
			if s.right != invalidState && seen.Insert(uint32(s.right)) {
				stack = append(stack, s.right)
			}
		}
	}

	out := make([]stateID, len(seen.Values()))
	for i, v := range seen.Values() {
		out[i] = stateID(v)
	}
	sortStateIDs(out)
	return out
}

// move computes the set of NFA states reachable from states on input byte b,
// then epsilon-closes the result — one determinization step.
func move(prog *program, states []stateID, b byte) []stateID {
	targets := sparse.New(len(prog.states))
	for _, sid := range states {
		s := prog.state(sid)
		if s == nil {
			continue
		}
		switch s.kind {
		case kindByteRange:
			if b >= s.lo && b <= s.hi {
				targets.Insert(uint32(s.next))
			}
		case kindSparse:
			for _, tr := range s.transitions {
				if b >= tr.Lo && b <= tr.Hi {
					targets.Insert(uint32(tr.Next))
				}
			}
		}
	}
	if targets.Len() == 0 {
		return nil
	}
	raw := make([]stateID, len(targets.Values()))
	for i, v := range targets.Values() {
		raw[i] = stateID(v)
	}
	return epsilonClosure(prog, raw)
}

func containsMatch(prog *program, states []stateID) bool {
	for _, sid := range states {
		if prog.isMatch(sid) {
			return true
		}
	}
	return false
}

func sortStateIDs(s []stateID) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

// hashStateSet derives a canonical key for a sorted NFA state set, so that
// two subset-construction steps landing on the same set of NFA states are
// recognized as the same DFA state regardless of the order transitions were
// explored in.
func hashStateSet(states []stateID) uint64 {
	h := fnv.New64a()
	for _, sid := range states {
		n := conv.Uint64ToUint32(uint64(sid))
		_, _ = h.Write([]byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)})
	}
	return h.Sum64()
}
