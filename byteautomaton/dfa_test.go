package byteautomaton

import "testing"

func mustCompile(t *testing.T, pattern string) *DFA {
	t.Helper()
	d, err := Compile(pattern)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", pattern, err)
	}
	return d
}

func run(d *DFA, s string) StateID {
	state := d.Start()
	for i := 0; i < len(s); i++ {
		if d.IsDead(state) {
			return DeadState
		}
		class := d.Classes().Get(s[i])
		state = d.Step(state, class)
	}
	return state
}

func TestCompileLiteral(t *testing.T) {
	d := mustCompile(t, "^abc$")

	end := run(d, "abc")
	if d.IsDead(end) || !d.IsFinal(end) {
		t.Fatal("\"abc\" should reach a final state")
	}

	if mid := run(d, "ab"); d.IsFinal(mid) {
		t.Fatal("\"ab\" is a strict prefix and must not be final")
	}

	if bad := run(d, "abx"); !d.IsDead(bad) {
		t.Fatal("\"abx\" should fall into the dead state")
	}
}

func TestCompileCharClass(t *testing.T) {
	d := mustCompile(t, "^[a-z]$")

	for _, b := range []byte("amz") {
		end := run(d, string(b))
		if !d.IsFinal(end) {
			t.Fatalf("byte %q should be accepted", b)
		}
	}
	if end := run(d, "A"); d.IsFinal(end) {
		t.Fatal("uppercase byte should not be accepted by [a-z]")
	}
}

func TestCompileOptional(t *testing.T) {
	d := mustCompile(t, "^ab?$")

	if end := run(d, "a"); !d.IsFinal(end) {
		t.Fatal("\"a\" should be accepted by ab?")
	}
	if end := run(d, "ab"); !d.IsFinal(end) {
		t.Fatal("\"ab\" should be accepted by ab?")
	}
	if end := run(d, "abb"); !d.IsDead(end) {
		t.Fatal("\"abb\" should be rejected by ab?")
	}
}

func TestCompileAlternation(t *testing.T) {
	d := mustCompile(t, "^(foo|bar)$")

	for _, s := range []string{"foo", "bar"} {
		if end := run(d, s); !d.IsFinal(end) {
			t.Fatalf("%q should be accepted", s)
		}
	}
	if end := run(d, "baz"); !d.IsDead(end) {
		t.Fatal("\"baz\" should be rejected")
	}
}

func TestCompileStarAndPlus(t *testing.T) {
	star := mustCompile(t, "^a*$")
	if end := run(star, ""); !star.IsFinal(end) {
		t.Fatal("a* should accept the empty string")
	}
	if end := run(star, "aaaa"); !star.IsFinal(end) {
		t.Fatal("a* should accept \"aaaa\"")
	}

	plus := mustCompile(t, "^a+$")
	if end := run(plus, ""); plus.IsFinal(end) {
		t.Fatal("a+ should not accept the empty string")
	}
	if end := run(plus, "aaa"); !plus.IsFinal(end) {
		t.Fatal("a+ should accept \"aaa\"")
	}
}

func TestCompileRepeatRange(t *testing.T) {
	d := mustCompile(t, "^a{2,3}$")
	if end := run(d, "a"); !d.IsDead(end) {
		t.Fatal("a{2,3} should reject \"a\"")
	}
	if end := run(d, "aa"); !d.IsFinal(end) {
		t.Fatal("a{2,3} should accept \"aa\"")
	}
	if end := run(d, "aaa"); !d.IsFinal(end) {
		t.Fatal("a{2,3} should accept \"aaa\"")
	}
	if end := run(d, "aaaa"); !d.IsDead(end) {
		t.Fatal("a{2,3} should reject \"aaaa\"")
	}
}

func TestDeterminizationIsExhaustive(t *testing.T) {
	// [a-z]{3} has exactly 4 distinct "progress" states (0,1,2,3 letters
	// consumed) regardless of which letters were seen, since every letter
	// shares one byte class.
	d := mustCompile(t, "^[a-z]{3}$")
	if d.NumStates() < 4 {
		t.Fatalf("expected at least 4 reachable states, got %d", d.NumStates())
	}
}

func TestInvalidPattern(t *testing.T) {
	if _, err := Compile("("); err == nil {
		t.Fatal("expected an error for unbalanced parenthesis")
	}
}
