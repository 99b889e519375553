package byteautomaton

import "regexp/syntax"

// DeadClasses returns the set of byte classes that lead to DeadState from
// every reachable state of d. A token that contains a byte in a dead class
// can never be accepted anywhere in the automaton and is safe to prune
// before the prefix graph is even built.
func DeadClasses(d *DFA) map[Class]bool {
	dead := make(map[Class]bool, d.numClasses)
	for c := 0; c < d.numClasses; c++ {
		class := Class(c)
		allDead := true
		for s := 0; s < len(d.transitions); s++ {
			if d.transitions[s][class] != DeadState {
				allDead = false
				break
			}
		}
		if allDead {
			dead[class] = true
		}
	}
	return dead
}

// LiveBytes reports, for each of the 256 byte values, whether that byte can
// occur anywhere in a string the pattern matches. It is a static,
// syntax-level approximation (it does not run the automaton) used to check
// whether a candidate ghost-token prefix byte is safe to introduce without
// colliding with the regex's own alphabet — see the mute package.
func LiveBytes(pattern string) (map[byte]bool, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	live := make(map[byte]bool)
	collectLiveBytes(re, live)
	return live, nil
}

func collectLiveBytes(re *syntax.Regexp, live map[byte]bool) {
	switch re.Op {
	case syntax.OpLiteral:
		var buf [4]byte
		for _, r := range re.Rune {
			n := encodeRune(buf[:], r)
			for i := 0; i < n; i++ {
				live[buf[i]] = true
			}
		}

	case syntax.OpCharClass:
		addLiveRanges(re.Rune, live)

	case syntax.OpAnyChar:
		for b := 0; b < 256; b++ {
			live[byte(b)] = true
		}

	case syntax.OpAnyCharNotNL:
		for b := 0; b < 256; b++ {
			if b != '\n' {
				live[byte(b)] = true
			}
		}

	case syntax.OpConcat, syntax.OpAlternate:
		for _, sub := range re.Sub {
			collectLiveBytes(sub, live)
		}

	case syntax.OpCapture, syntax.OpStar, syntax.OpPlus, syntax.OpQuest:
		for _, sub := range re.Sub {
			collectLiveBytes(sub, live)
		}

	case syntax.OpRepeat:
		for _, sub := range re.Sub {
			collectLiveBytes(sub, live)
		}

	// Anchors, empty matches and word boundaries are zero-width: they
	// constrain position, not which bytes occur, so they contribute
	// nothing to the live set.
	case syntax.OpBeginLine, syntax.OpBeginText, syntax.OpEndLine, syntax.OpEndText,
		syntax.OpEmptyMatch, syntax.OpWordBoundary, syntax.OpNoWordBoundary:
	}
}

// addLiveRanges marks every byte that can appear when encoding any rune in
// the given [lo,hi] pairs as UTF-8. ASCII ranges are marked directly;
// non-ASCII ranges are walked rune by rune and the walk stops after 4096
// runes of a range; runes past that point contribute no bytes.
func addLiveRanges(ranges []rune, live map[byte]bool) {
	var buf [4]byte
	for i := 0; i < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		if hi < 128 {
			for b := lo; b <= hi; b++ {
				live[byte(b)] = true
			}
			continue
		}
		count := 0
		for r := lo; r <= hi; r++ {
			n := encodeRune(buf[:], r)
			for i := 0; i < n; i++ {
				live[buf[i]] = true
			}
			count++
			if count > 4096 {
				break
			}
		}
	}
}
