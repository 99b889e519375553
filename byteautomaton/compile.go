package byteautomaton

import (
	"fmt"
	"regexp/syntax"
)

// compileOptions configures Thompson construction.
type compileOptions struct {
	dotNewline        bool
	maxRecursionDepth int
}

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

// WithDotNewline makes '.' match '\n' as well as every other byte.
func WithDotNewline(v bool) CompileOption {
	return func(o *compileOptions) { o.dotNewline = v }
}

// WithMaxRecursionDepth bounds the recursion depth of pattern compilation.
// The default is 100, generous for any regex a vocabulary-constrained
// grammar is likely to need.
func WithMaxRecursionDepth(n int) CompileOption {
	return func(o *compileOptions) { o.maxRecursionDepth = n }
}

type compiler struct {
	opts    compileOptions
	builder *nfaBuilder
	depth   int
}

// compileProgram parses pattern with regexp/syntax and builds the
// corresponding Thompson NFA. Token-level matching is always anchored at
// position 0, so unlike a general regex engine there is exactly one start
// state and no separate unanchored prefix.
func compileProgram(pattern string, opts ...CompileOption) (*program, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: fmt.Errorf("%w: %v", ErrInvalidPattern, err)}
	}

	o := compileOptions{maxRecursionDepth: 100}
	for _, opt := range opts {
		opt(&o)
	}

	c := &compiler{opts: o, builder: newNFABuilder()}
	start, end, err := c.compileRegexp(re)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}

	matchID := c.builder.addMatch()
	if err := c.builder.patch(end, matchID); err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	c.builder.setStart(start)

	prog, err := c.builder.build()
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	return prog, nil
}

// compileRegexp recursively lowers one AST node into a Thompson fragment,
// returning the (start, end) state pair; end still needs to be patched to
// whatever follows it.
func (c *compiler) compileRegexp(re *syntax.Regexp) (start, end stateID, err error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.opts.maxRecursionDepth {
		return invalidState, invalidState, ErrTooComplex
	}

	switch re.Op {
	case syntax.OpLiteral:
		return c.compileLiteral(re.Rune)
	case syntax.OpCharClass:
		return c.compileCharClass(re.Rune)
	case syntax.OpAnyChar:
		return c.compileAnyChar()
	case syntax.OpAnyCharNotNL:
		return c.compileAnyChar()
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpStar:
		return c.compileStar(re.Sub[0])
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0])
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0])
	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max)
	case syntax.OpCapture:
		// Capture groups carry no meaning for a token grammar; compile the
		// wrapped expression directly.
		return c.compileRegexp(re.Sub[0])
	case syntax.OpBeginLine, syntax.OpBeginText, syntax.OpEndLine, syntax.OpEndText, syntax.OpEmptyMatch:
		// Anchors are handled structurally: every program has exactly one
		// start state and is matched anchored end to end, so ^ and $ pass
		// through as no-ops.
		return c.compileEmptyMatch()
	default:
		return invalidState, invalidState, fmt.Errorf("%w: %v", ErrUnsupportedOp, re.Op)
	}
}

func (c *compiler) compileLiteral(runes []rune) (start, end stateID, err error) {
	if len(runes) == 0 {
		return c.compileEmptyMatch()
	}
	first, prev := invalidState, invalidState
	var buf [4]byte
	for _, r := range runes {
		n := encodeRune(buf[:], r)
		for i := 0; i < n; i++ {
			id := c.builder.addByteRange(buf[i], buf[i], invalidState)
			if first == invalidState {
				first = id
			}
			if prev != invalidState {
				if err := c.builder.patch(prev, id); err != nil {
					return invalidState, invalidState, err
				}
			}
			prev = id
		}
	}
	return first, prev, nil
}

func (c *compiler) compileCharClass(ranges []rune) (start, end stateID, err error) {
	if len(ranges) == 0 {
		// An empty class matches no byte: start on a Fail state, with a
		// separate, unreachable end left for the caller to patch.
		fail := c.builder.addFail()
		end := c.builder.addEpsilon(invalidState)
		return fail, end, nil
	}

	allASCII := true
	for _, r := range ranges {
		if r > 127 {
			allASCII = false
			break
		}
	}

	if allASCII {
		var transitions []nfaTransition
		for i := 0; i < len(ranges); i += 2 {
			transitions = append(transitions, nfaTransition{Lo: byte(ranges[i]), Hi: byte(ranges[i+1]), Next: invalidState})
		}
		if len(transitions) == 1 {
			t := transitions[0]
			id := c.builder.addByteRange(t.Lo, t.Hi, invalidState)
			return id, id, nil
		}
		target := c.builder.addEpsilon(invalidState)
		for i := range transitions {
			transitions[i].Next = target
		}
		id := c.builder.addSparse(transitions)
		return id, target, nil
	}

	return c.compileUnicodeClass(ranges)
}

// compileUnicodeClass expands a non-ASCII class into an alternation of its
// individual codepoints. A class covering more than 1024 codepoints is not
// compiled: it returns ErrTooComplex. This includes every negated class
// such as [^a], since negation spans the whole Unicode range.
func (c *compiler) compileUnicodeClass(ranges []rune) (start, end stateID, err error) {
	var alts []*syntax.Regexp
	for i := 0; i < len(ranges); i += 2 {
		for r := ranges[i]; r <= ranges[i+1]; r++ {
			alts = append(alts, &syntax.Regexp{Op: syntax.OpLiteral, Rune: []rune{r}})
			if len(alts) > 1024 {
				return invalidState, invalidState, fmt.Errorf("%w: unicode class too large", ErrTooComplex)
			}
		}
	}
	if len(alts) == 1 {
		return c.compileRegexp(alts[0])
	}
	return c.compileAlternate(alts)
}

func (c *compiler) compileAnyChar() (start, end stateID, err error) {
	if c.opts.dotNewline {
		id := c.builder.addByteRange(0, 255, invalidState)
		return id, id, nil
	}
	return c.compileAnyCharNotNL()
}

func (c *compiler) compileAnyCharNotNL() (start, end stateID, err error) {
	target := c.builder.addEpsilon(invalidState)
	transitions := []nfaTransition{
		{Lo: 0x00, Hi: 0x09, Next: target},
		{Lo: 0x0B, Hi: 0xFF, Next: target},
	}
	id := c.builder.addSparse(transitions)
	return id, target, nil
}

func (c *compiler) compileConcat(subs []*syntax.Regexp) (start, end stateID, err error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}
	start, end, err = c.compileRegexp(subs[0])
	if err != nil {
		return invalidState, invalidState, err
	}
	for _, sub := range subs[1:] {
		nextStart, nextEnd, err := c.compileRegexp(sub)
		if err != nil {
			return invalidState, invalidState, err
		}
		if err := c.builder.patch(end, nextStart); err != nil {
			return invalidState, invalidState, err
		}
		end = nextEnd
	}
	return start, end, nil
}

func (c *compiler) compileAlternate(subs []*syntax.Regexp) (start, end stateID, err error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}
	if len(subs) == 1 {
		return c.compileRegexp(subs[0])
	}

	starts := make([]stateID, 0, len(subs))
	ends := make([]stateID, 0, len(subs))
	for _, sub := range subs {
		s, e, err := c.compileRegexp(sub)
		if err != nil {
			return invalidState, invalidState, err
		}
		starts = append(starts, s)
		ends = append(ends, e)
	}

	split := c.buildSplitChain(starts)
	join := c.builder.addEpsilon(invalidState)
	for _, e := range ends {
		_ = c.builder.patch(e, join)
	}
	return split, join, nil
}

func (c *compiler) buildSplitChain(targets []stateID) stateID {
	if len(targets) == 1 {
		return targets[0]
	}
	if len(targets) == 2 {
		return c.builder.addSplit(targets[0], targets[1])
	}
	right := c.buildSplitChain(targets[1:])
	return c.builder.addSplit(targets[0], right)
}

func (c *compiler) compileStar(sub *syntax.Regexp) (start, end stateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return invalidState, invalidState, err
	}
	end = c.builder.addEpsilon(invalidState)
	split := c.builder.addSplit(subStart, end)
	if err := c.builder.patch(subEnd, split); err != nil {
		return invalidState, invalidState, err
	}
	return split, end, nil
}

func (c *compiler) compilePlus(sub *syntax.Regexp) (start, end stateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return invalidState, invalidState, err
	}
	end = c.builder.addEpsilon(invalidState)
	split := c.builder.addSplit(subStart, end)
	if err := c.builder.patch(subEnd, split); err != nil {
		return invalidState, invalidState, err
	}
	return subStart, end, nil
}

func (c *compiler) compileQuest(sub *syntax.Regexp) (start, end stateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return invalidState, invalidState, err
	}
	end = c.builder.addEpsilon(invalidState)
	split := c.builder.addSplit(subStart, end)
	if err := c.builder.patch(subEnd, end); err != nil {
		return invalidState, invalidState, err
	}
	return split, end, nil
}

func (c *compiler) compileRepeat(sub *syntax.Regexp, minCount, maxCount int) (start, end stateID, err error) {
	if maxCount == -1 {
		return c.compileRepeatMin(sub, minCount)
	}
	if minCount == maxCount {
		return c.compileRepeatExact(sub, minCount)
	}
	return c.compileRepeatRange(sub, minCount, maxCount)
}

func (c *compiler) compileRepeatExact(sub *syntax.Regexp, n int) (start, end stateID, err error) {
	if n == 0 {
		return c.compileEmptyMatch()
	}
	if n == 1 {
		return c.compileRegexp(sub)
	}
	subs := make([]*syntax.Regexp, n)
	for i := range subs {
		subs[i] = sub
	}
	return c.compileConcat(subs)
}

func (c *compiler) compileRepeatMin(sub *syntax.Regexp, minCount int) (start, end stateID, err error) {
	if minCount == 0 {
		return c.compileStar(sub)
	}
	subs := make([]*syntax.Regexp, minCount, minCount+1)
	for i := range subs {
		subs[i] = sub
	}
	subs = append(subs, &syntax.Regexp{Op: syntax.OpStar, Sub: []*syntax.Regexp{sub}})
	return c.compileConcat(subs)
}

func (c *compiler) compileRepeatRange(sub *syntax.Regexp, minCount, maxCount int) (start, end stateID, err error) {
	if minCount > maxCount {
		return invalidState, invalidState, fmt.Errorf("invalid repeat range {%d,%d}", minCount, maxCount)
	}
	var subs []*syntax.Regexp
	for i := 0; i < minCount; i++ {
		subs = append(subs, sub)
	}
	for i := 0; i < maxCount-minCount; i++ {
		subs = append(subs, &syntax.Regexp{Op: syntax.OpQuest, Sub: []*syntax.Regexp{sub}})
	}
	return c.compileConcat(subs)
}

func (c *compiler) compileEmptyMatch() (start, end stateID, err error) {
	id := c.builder.addEpsilon(invalidState)
	return id, id, nil
}

// encodeRune UTF-8 encodes r into buf (len(buf) >= 4) and returns the byte count.
func encodeRune(buf []byte, r rune) int {
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = byte(0xC0 | (r >> 6))
		buf[1] = byte(0x80 | (r & 0x3F))
		return 2
	case r < 0x10000:
		buf[0] = byte(0xE0 | (r >> 12))
		buf[1] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[2] = byte(0x80 | (r & 0x3F))
		return 3
	default:
		buf[0] = byte(0xF0 | (r >> 18))
		buf[1] = byte(0x80 | ((r >> 12) & 0x3F))
		buf[2] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[3] = byte(0x80 | (r & 0x3F))
		return 4
	}
}
