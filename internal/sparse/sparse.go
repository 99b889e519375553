// Package sparse provides a fixed-capacity set of uint32 values with O(1)
// insert and membership testing, used while exploring NFA state frontiers
// during byte-DFA determinization.
package sparse

// Set tracks a set of values in [0, capacity) with O(1) insert and
// membership testing, plus O(1) insertion-order iteration via Values.
//
// Membership is tested through sparse (indexed by value) pointing into
// dense (the compact, insertion-ordered backing array); there is no need to
// remove individual elements during determinization, only to build a set
// up and clear it for reuse, so that's the only mutation this type offers.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// New creates a Set over values in [0, capacity).
func New(capacity int) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds v to the set, reporting whether it was newly added.
func (s *Set) Insert(v uint32) bool {
	if s.Contains(v) {
		return false
	}
	s.sparse[v] = uint32(len(s.dense))
	s.dense = append(s.dense, v)
	return true
}

// Contains reports whether v is in the set.
func (s *Set) Contains(v uint32) bool {
	if int(v) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[v]
	return int(idx) < len(s.dense) && s.dense[idx] == v
}

// Len returns the number of elements currently in the set.
func (s *Set) Len() int { return len(s.dense) }

// Clear empties the set in O(1), keeping the backing arrays for reuse.
func (s *Set) Clear() { s.dense = s.dense[:0] }

// Values returns the set's elements in insertion order. The slice aliases
// the set's internal storage and is invalidated by the next mutation.
func (s *Set) Values() []uint32 { return s.dense }
