package byteautomaton

import "fmt"

// nfaBuilder assembles a program one fragment at a time. Compile methods in
// compile.go call add* to emit states and patch to wire forward references
// (loop bodies, alternation joins) once their targets are known.
type nfaBuilder struct {
	states       []nfaState
	start        stateID
	byteClassSet *ByteClassSet
}

func newNFABuilder() *nfaBuilder {
	return &nfaBuilder{
		states:       make([]nfaState, 0, 16),
		start:        invalidState,
		byteClassSet: NewByteClassSet(),
	}
}

func (b *nfaBuilder) addMatch() stateID {
	id := stateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindMatch})
	return id
}

func (b *nfaBuilder) addByteRange(lo, hi byte, next stateID) stateID {
	b.byteClassSet.SetRange(lo, hi)
	id := stateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindByteRange, lo: lo, hi: hi, next: next})
	return id
}

func (b *nfaBuilder) addSparse(transitions []nfaTransition) stateID {
	for _, t := range transitions {
		b.byteClassSet.SetRange(t.Lo, t.Hi)
	}
	id := stateID(len(b.states))
	trans := make([]nfaTransition, len(transitions))
	copy(trans, transitions)
	b.states = append(b.states, nfaState{kind: kindSparse, transitions: trans})
	return id
}

func (b *nfaBuilder) addSplit(left, right stateID) stateID {
	id := stateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindSplit, left: left, right: right})
	return id
}

func (b *nfaBuilder) addEpsilon(next stateID) stateID {
	id := stateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindEpsilon, next: next})
	return id
}

func (b *nfaBuilder) addFail() stateID {
	id := stateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindFail})
	return id
}

// patch rewrites the single forward target of a ByteRange or Epsilon state.
func (b *nfaBuilder) patch(id, target stateID) error {
	if int(id) >= len(b.states) {
		return &buildError{Message: "state id out of bounds", State: id}
	}
	s := &b.states[id]
	switch s.kind {
	case kindByteRange, kindEpsilon:
		s.next = target
		return nil
	default:
		return &buildError{Message: fmt.Sprintf("cannot patch state of kind %s", s.kind), State: id}
	}
}

func (b *nfaBuilder) setStart(start stateID) {
	b.start = start
}

func (b *nfaBuilder) validate() error {
	if b.start == invalidState {
		return &buildError{Message: "start state not set"}
	}
	if int(b.start) >= len(b.states) {
		return &buildError{Message: "start state out of bounds", State: b.start}
	}
	for i := range b.states {
		s := &b.states[i]
		id := stateID(i)
		switch s.kind {
		case kindByteRange, kindEpsilon:
			if s.next != invalidState && int(s.next) >= len(b.states) {
				return &buildError{Message: fmt.Sprintf("invalid next state %d", s.next), State: id}
			}
		case kindSplit:
			if s.left != invalidState && int(s.left) >= len(b.states) {
				return &buildError{Message: fmt.Sprintf("invalid left state %d", s.left), State: id}
			}
			if s.right != invalidState && int(s.right) >= len(b.states) {
				return &buildError{Message: fmt.Sprintf("invalid right state %d", s.right), State: id}
			}
		case kindSparse:
			for j, t := range s.transitions {
				if t.Next != invalidState && int(t.Next) >= len(b.states) {
					return &buildError{Message: fmt.Sprintf("invalid transition %d target %d", j, t.Next), State: id}
				}
			}
		}
	}
	return nil
}

func (b *nfaBuilder) build() (*program, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &program{
		states:      b.states,
		start:       b.start,
		byteClasses: b.byteClassSet.ByteClasses(),
	}, nil
}
