// Package prefixgraph builds the per-starting-class forest of token
// class-sequence prefixes the parallel walker traverses once per shared
// prefix rather than once per token.
package prefixgraph

import (
	"sort"

	"github.com/coregx/tokendfa/byteautomaton"
	"github.com/coregx/tokendfa/vocab"
)

// Node is one position in a ClassSequence prefix tree: the ByteClass on
// the edge leading into it (meaningless at a root), the TokenIDs whose
// ClassSequence terminates exactly here, and the children reached by the
// next ByteClass in some surviving token's encoding.
type Node struct {
	Class    byteautomaton.Class
	TokenIDs []vocab.TokenID
	Children []*Node
}

// Forest is the disjoint set of prefix trees, one per distinct starting
// ByteClass. Roots are sorted by class for deterministic iteration.
type Forest struct {
	Roots []*Node
}

// Builder groups tokens sharing a ClassSequence into one equivalence
// entry before a single trie insertion, so two tokens with identical byte
// class encodings are walked by C5 exactly once.
type Builder struct {
	order []string
	seqs  map[string][]byteautomaton.Class
	ids   map[string][]vocab.TokenID
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		seqs: make(map[string][]byteautomaton.Class),
		ids:  make(map[string][]vocab.TokenID),
	}
}

// Insert records that tokenID's byte encoding maps to classSeq under the
// DFA's byte classes. Tokens with an equal classSeq are coalesced into one
// equivalence entry regardless of insertion order.
func (b *Builder) Insert(classSeq []byteautomaton.Class, tokenID vocab.TokenID) {
	key := seqKey(classSeq)
	if _, ok := b.seqs[key]; !ok {
		seq := make([]byteautomaton.Class, len(classSeq))
		copy(seq, classSeq)
		b.seqs[key] = seq
		b.order = append(b.order, key)
	}
	b.ids[key] = append(b.ids[key], tokenID)
}

// Build materializes the equivalence entries gathered so far into a
// prefix forest, one trie insertion per distinct ClassSequence.
func (b *Builder) Build() *Forest {
	roots := make(map[byteautomaton.Class]*Node)
	var rootClasses []byteautomaton.Class

	for _, key := range b.order {
		seq := b.seqs[key]
		if len(seq) == 0 {
			continue
		}
		rootClass := seq[0]
		root, ok := roots[rootClass]
		if !ok {
			root = &Node{Class: rootClass}
			roots[rootClass] = root
			rootClasses = append(rootClasses, rootClass)
		}

		cur := root
		for i := 1; i < len(seq); i++ {
			cur = childOrCreate(cur, seq[i])
		}
		cur.TokenIDs = append(cur.TokenIDs, b.ids[key]...)
	}

	sort.Slice(rootClasses, func(i, j int) bool { return rootClasses[i] < rootClasses[j] })
	out := make([]*Node, len(rootClasses))
	for i, c := range rootClasses {
		out[i] = roots[c]
	}
	sortChildrenDeep(out)
	return &Forest{Roots: out}
}

func childOrCreate(n *Node, class byteautomaton.Class) *Node {
	for _, c := range n.Children {
		if c.Class == class {
			return c
		}
	}
	child := &Node{Class: class}
	n.Children = append(n.Children, child)
	return child
}

// sortChildrenDeep orders every node's children by ByteClass so that
// traversal order depends only on the set of inserted sequences, never on
// insertion order — walked with an explicit stack, matching the rest of
// the index's avoidance of recursion in code that runs once per state.
func sortChildrenDeep(roots []*Node) {
	stack := make([]*Node, len(roots))
	copy(stack, roots)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sort.Slice(n.Children, func(i, j int) bool { return n.Children[i].Class < n.Children[j].Class })
		stack = append(stack, n.Children...)
	}
}

func seqKey(seq []byteautomaton.Class) string {
	b := make([]byte, len(seq))
	for i, c := range seq {
		b[i] = byte(c)
	}
	return string(b)
}

// Iterator walks a single prefix tree depth-first with an explicit stack,
// mirroring the original source's PrefixGraphIterator accept/reject
// protocol: a caller consults Current, then tells the iterator whether to
// descend into its children (AcceptAndAdvance) or to abandon the subtree
// (RejectAndAdvance) — the same shape as the walker pruning a branch the
// moment the byte DFA reaches a dead state.
type Iterator struct {
	stack   []*Node
	current *Node
}

// NewIterator returns an iterator positioned at root.
func NewIterator(root *Node) *Iterator {
	it := &Iterator{stack: []*Node{root}}
	it.advance()
	return it
}

// Current returns the node at the iterator's cursor, or nil when the walk
// is exhausted.
func (it *Iterator) Current() *Node { return it.current }

// AcceptAndAdvance pushes the current node's children onto the stack
// (they will be visited before any sibling already queued) and advances
// to the next node.
func (it *Iterator) AcceptAndAdvance() {
	it.stack = append(it.stack, it.current.Children...)
	it.advance()
}

// RejectAndAdvance abandons the current node's subtree entirely and
// advances to the next queued node.
func (it *Iterator) RejectAndAdvance() {
	it.advance()
}

func (it *Iterator) advance() {
	if len(it.stack) == 0 {
		it.current = nil
		return
	}
	it.current = it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
}
