// Package transitions holds the token-level automaton's state-transition
// table: during construction a per-state map keyed by token id, collapsed
// by Finalize into a dense, binary-searchable representation plus a
// contiguous bitmask per state for O(1) amortized allowed-set lookup.
package transitions

import (
	"fmt"
	"sort"

	"github.com/coregx/tokendfa/byteautomaton"
	"github.com/coregx/tokendfa/vocab"
)

// StateID is the byte-DFA state id, reused unchanged as the token-level
// automaton's state id.
type StateID = byteautomaton.StateID

// Transition is one dense, sorted-by-token entry in a state's transition
// row, exposed for serialization.
type Transition struct {
	Token vocab.TokenID
	Next  StateID
}

type classTransition = Transition

// GhostBinding pairs a ghost token id with the real vocabulary token id
// it stands in for, as handed back by an extended vocabulary's Extend
// call paired against mute.GhostToken.RealID.
type GhostBinding struct {
	Ghost vocab.TokenID
	Real  vocab.TokenID
}

// ConflictError reports that Insert was asked to record two different
// destinations for the same (state, token) pair, which would break the
// token-level automaton's determinism invariant.
type ConflictError struct {
	State    StateID
	Token    vocab.TokenID
	Existing StateID
	Attempt  StateID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transitions: state %d token %d already transitions to %d, cannot also transition to %d",
		e.State, e.Token, e.Existing, e.Attempt)
}

// Table is the token-level automaton's transition relation. Insert is
// called only while building, by the single goroutine merging each
// parallel walker worker's thread-local delta — concurrent callers are
// never expected, so the table takes no internal lock; this is documented,
// not enforced. After Finalize the table never mutates again and may
// be shared by any number of concurrent Guides.
type Table struct {
	vocabSize int
	numStates int

	temp []map[vocab.TokenID]StateID // indexed by StateID, nil until first insert for that state

	finalized   bool
	transitions [][]classTransition
	masks       [][]uint64
}

// NewTable returns an empty table sized for vocabSize tokens across
// numStates byte-DFA states.
func NewTable(vocabSize, numStates int) *Table {
	return &Table{
		vocabSize: vocabSize,
		numStates: numStates,
		temp:      make([]map[vocab.TokenID]StateID, numStates),
	}
}

// Insert records that token transitions from to. Idempotent: inserting
// the same (from, token, to) triple twice is a no-op. Inserting a
// different to for an already-recorded (from, token) pair is a
// programmer error and returns a *ConflictError instead of silently
// overwriting one destination with another.
func (t *Table) Insert(from StateID, token vocab.TokenID, to StateID) error {
	m := t.temp[from]
	if m == nil {
		m = make(map[vocab.TokenID]StateID)
		t.temp[from] = m
	}
	if existing, ok := m[token]; ok {
		if existing != to {
			return &ConflictError{State: from, Token: token, Existing: existing, Attempt: to}
		}
		return nil
	}
	m[token] = to
	return nil
}

// Reduce rewrites every ghost token id recorded by Insert into the real
// token id it represents. When a state has transitions for both a ghost
// and its underlying real token, the ghost's destination wins — it is
// authoritative for the literal segment that introduced it. Reduce must
// run after every Insert call and before Finalize.
func (t *Table) Reduce(bindings []GhostBinding) {
	for _, b := range bindings {
		for _, m := range t.temp {
			if m == nil {
				continue
			}
			if to, ok := m[b.Ghost]; ok {
				m[b.Real] = to
				delete(m, b.Ghost)
			}
		}
	}
}

// Finalize collapses the construction-time map representation into a
// dense, sorted-by-token array per state (for binary-search NextState)
// and a contiguous word-aligned bitmask per state (for AllowedMask). The
// table is immutable from this point on.
func (t *Table) Finalize() {
	words := (t.vocabSize + 63) / 64
	t.transitions = make([][]classTransition, t.numStates)
	t.masks = make([][]uint64, t.numStates)

	for s := 0; s < t.numStates; s++ {
		m := t.temp[s]
		row := make([]classTransition, 0, len(m))
		for tok, to := range m {
			row = append(row, classTransition{Token: tok, Next: to})
		}
		sort.Slice(row, func(i, j int) bool { return row[i].Token < row[j].Token })
		t.transitions[s] = row

		mask := make([]uint64, words)
		for _, tr := range row {
			mask[tr.Token/64] |= 1 << (tr.Token % 64)
		}
		t.masks[s] = mask
	}
	t.temp = nil
	t.finalized = true
}

// NumStates returns the number of states the table was sized for.
func (t *Table) NumStates() int { return t.numStates }

// VocabSize returns the vocabulary size the table's masks are sized for.
func (t *Table) VocabSize() int { return t.vocabSize }

// NextState returns the destination state for (from, token) and true, or
// false if no such transition exists (the token is not allowed from
// from). Valid only after Finalize.
func (t *Table) NextState(from StateID, token vocab.TokenID) (StateID, bool) {
	if !t.finalized || int(from) >= len(t.transitions) {
		return 0, false
	}
	row := t.transitions[from]
	i := sort.Search(len(row), func(k int) bool { return row[k].Token >= token })
	if i < len(row) && row[i].Token == token {
		return row[i].Next, true
	}
	return 0, false
}

// AllowedMask returns the bitmask of tokens allowed from state, word i
// holding bits for tokens [64i, 64i+64). The returned slice is the
// table's own storage and must not be mutated by the caller. Valid only
// after Finalize.
func (t *Table) AllowedMask(state StateID) []uint64 {
	if !t.finalized || int(state) >= len(t.masks) {
		return nil
	}
	return t.masks[state]
}

// Transitions returns state's dense, token-sorted transition row. The
// returned slice is the table's own storage and must not be mutated.
// Valid only after Finalize.
func (t *Table) Transitions(state StateID) []Transition {
	if !t.finalized || int(state) >= len(t.transitions) {
		return nil
	}
	return t.transitions[state]
}

// LoadFinalized rebuilds a finalized table directly from a dense
// per-state transition list, as read back off disk. rows must already be
// sorted by token id per state, matching what Finalize produces.
func LoadFinalized(vocabSize int, rows [][]Transition) *Table {
	t := &Table{vocabSize: vocabSize, numStates: len(rows), finalized: true}
	words := (vocabSize + 63) / 64
	t.transitions = rows
	t.masks = make([][]uint64, len(rows))
	for s, row := range rows {
		mask := make([]uint64, words)
		for _, tr := range row {
			mask[tr.Token/64] |= 1 << (tr.Token % 64)
		}
		t.masks[s] = mask
	}
	return t
}

// AllowedTokens appends every token id allowed from state to buf and
// returns the extended slice, in ascending token id order.
func (t *Table) AllowedTokens(state StateID, buf []vocab.TokenID) []vocab.TokenID {
	if !t.finalized || int(state) >= len(t.transitions) {
		return buf
	}
	for _, tr := range t.transitions[state] {
		buf = append(buf, tr.Token)
	}
	return buf
}
