package tokendfa

import (
	"runtime"
	"sync"

	"github.com/coregx/tokendfa/byteautomaton"
	"github.com/coregx/tokendfa/prefixgraph"
	"github.com/coregx/tokendfa/transitions"
	"github.com/coregx/tokendfa/vocab"
)

// insertion is one discovered (from, token, to) triple, accumulated into
// a worker's thread-local slice before being merged into the shared
// transitions.Table sequentially — the table's write path stays
// allocation-free and lock-free during the parallel sweep itself.
type insertion struct {
	From  transitions.StateID
	Token vocab.TokenID
	To    transitions.StateID
}

// buildTransitions is the parallel walker (C5): for every reachable
// byte-DFA state and every prefix-graph root, it walks the root's subtree
// with a state cursor threaded alongside the tree, pruning the instant the
// cursor reaches a dead state, and recording one transition per surviving
// (state, token) pair. sinkState is the synthetic accept sink every final
// state's eos transition points to. A *transitions.ConflictError from the
// sequential merge is returned rather than masked: it signals that two
// equivalence-grouped tokens disagreed about their shared node's
// destination, which should never happen given the prefix graph's
// invariant, and must not pass silently if it does.
func buildTransitions(dfa *byteautomaton.DFA, forest *prefixgraph.Forest, eos vocab.TokenID, sinkState transitions.StateID, vocabSize, workers int) (*transitions.Table, error) {
	states := dfa.States()

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(states) {
		workers = len(states)
	}
	if workers < 1 {
		workers = 1
	}

	chunks := make([][]transitions.StateID, workers)
	for i, s := range states {
		chunks[i%workers] = append(chunks[i%workers], s)
	}

	results := make([][]insertion, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[w] = walkStates(dfa, forest, chunks[w])
		}()
	}
	wg.Wait()

	table := transitions.NewTable(vocabSize, int(sinkState)+1)
	for _, batch := range results {
		for _, ins := range batch {
			if err := table.Insert(ins.From, ins.Token, ins.To); err != nil {
				return nil, err
			}
		}
	}

	for _, s := range states {
		if dfa.IsFinal(s) {
			if err := table.Insert(s, eos, sinkState); err != nil {
				return nil, err
			}
		}
	}

	return table, nil
}

// walkStates runs the prefix-graph walk described in buildTransitions for
// a single worker's share of the reachable state space, returning every
// transition it discovers without touching shared state.
func walkStates(dfa *byteautomaton.DFA, forest *prefixgraph.Forest, states []transitions.StateID) []insertion {
	var out []insertion

	type frame struct {
		node   *prefixgraph.Node
		cursor transitions.StateID
	}
	var stack []frame

	for _, s := range states {
		for _, root := range forest.Roots {
			c := dfa.Step(s, root.Class)
			if dfa.IsDead(c) {
				continue
			}
			stack = append(stack, frame{node: root, cursor: c})

			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				for _, id := range top.node.TokenIDs {
					out = append(out, insertion{From: s, Token: id, To: top.cursor})
				}

				for _, child := range top.node.Children {
					c2 := dfa.Step(top.cursor, child.Class)
					if dfa.IsDead(c2) {
						continue
					}
					stack = append(stack, frame{node: child, cursor: c2})
				}
			}
		}
	}

	return out
}
