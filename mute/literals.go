// Package mute implements the literal-muting pass (C1): it finds the
// alphanumeric literal runs in a pattern that can be covered exactly by
// vocabulary tokens, replaces each run with a parenthesized run of
// ghost-token placeholders, and records which real token id each ghost
// stands for so the transition table can map it back after construction.
package mute

// literalMatch is one literal run found in a pattern, together with every
// byte offset at which the identical run occurs. Offsets are byte offsets
// into the pattern string, the form replaceLiterals consumes; the scan
// below only classifies ASCII alphanumeric characters as literal material.
type literalMatch struct {
	Literal   string
	Positions []int
}

// extractLiterals walks pattern once, character by character, tracking
// whether the cursor is inside a character class ([...]), inside a bounded
// repetition ({...}), or just past a backslash escape, and accumulates
// runs of alphanumeric characters into literal candidates. It is a direct
// port of the character-scanning state machine the reference muter uses to
// find literal substrings worth decomposing into vocabulary tokens.
//
// A literal run is split at '?' into its prefix and its last character,
// since "abc?" makes only "ab" mandatory and "c" optional — muting both
// halves together would wrongly force "c" to appear.
func extractLiterals(pattern string) []literalMatch {
	order := make([]string, 0, 8)
	positions := make(map[string][]int, 8)

	add := func(literal string, pos int) {
		if literal == "" {
			return
		}
		if _, ok := positions[literal]; !ok {
			order = append(order, literal)
		}
		positions[literal] = append(positions[literal], pos)
	}

	var (
		buffer         []byte
		startPos       = -1
		insideBrackets bool
		insideParen    bool
		insideEscape   bool
		countEscape    int
	)

	flush := func() {
		if len(buffer) >= 2 {
			add(string(buffer), startPos)
		}
		buffer = buffer[:0]
		startPos = -1
	}

	isAlnum := func(c byte) bool {
		return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		switch {
		case c == '\\':
			insideEscape = true

		case c == '[':
			insideBrackets = true
			insideEscape = false
			flush()

		case c == ']':
			insideBrackets = false
			insideEscape = false
			flush()

		case c == '(' || c == ')':
			insideEscape = false
			flush()

		case c == '{':
			insideParen = true
			insideEscape = false
			flush()

		case c == '}':
			insideParen = false
			insideEscape = false
			flush()

		case c == '"' || c == ',' || c == '-' || c == '_' || c == '.' || c == '*' || c == '+' || c == '|':
			insideEscape = false
			flush()

		case insideBrackets:
			// character-class contents never contribute literal material.

		case insideParen:
			// bounded-repetition counts ({2,5}) never contribute literal material.

		case isAlnum(c):
			if countEscape > 0 {
				countEscape--
				continue
			}
			if !insideEscape {
				if len(buffer) == 0 {
					startPos = i
				}
				buffer = append(buffer, c)
			} else {
				switch c {
				case 'x':
					countEscape = 2
				case 'u':
					countEscape = 4
				}
			}
			insideEscape = false

		case c == '?' && !insideEscape:
			if len(buffer) > 0 {
				last := buffer[len(buffer)-1]
				buffer = buffer[:len(buffer)-1]
				tailPos := startPos + len(buffer)
				flushed := string(buffer)
				flushPos := startPos
				buffer = buffer[:0]
				startPos = -1
				add(flushed, flushPos)
				add(string(last), tailPos)
			}

		default:
			flush()
		}
	}
	flush()

	out := make([]literalMatch, len(order))
	for i, lit := range order {
		out[i] = literalMatch{Literal: lit, Positions: positions[lit]}
	}
	return out
}

// literalReplacement is one literal-to-ghost-string substitution to apply
// to a pattern: replace every byte run of Original found at Positions with
// Replacement.
type literalReplacement struct {
	Original    string
	Replacement string
	Positions   []int
}

// replaceLiterals rebuilds pattern with every (Original at pos) occurrence
// named by replacements swapped for its Replacement. Occurrences are
// applied left to right; an occurrence whose start falls before the end of
// the previous one already applied is skipped, since it overlaps material
// that no longer exists in the original form.
func replaceLiterals(pattern string, replacements []literalReplacement) string {
	type occurrence struct {
		pos      int
		original string
		newValue string
	}

	var flat []occurrence
	for _, r := range replacements {
		for _, pos := range r.Positions {
			flat = append(flat, occurrence{pos: pos, original: r.Original, newValue: r.Replacement})
		}
	}

	for i := 1; i < len(flat); i++ {
		for j := i; j > 0 && flat[j-1].pos > flat[j].pos; j-- {
			flat[j-1], flat[j] = flat[j], flat[j-1]
		}
	}

	src := []byte(pattern)
	var out []byte
	lastIndex := 0
	for _, occ := range flat {
		if occ.pos < lastIndex {
			continue
		}
		out = append(out, src[lastIndex:occ.pos]...)
		out = append(out, occ.newValue...)
		lastIndex = occ.pos + len(occ.original)
	}
	out = append(out, src[lastIndex:]...)
	return string(out)
}
