package tokendfa

// Config configures how Build explores the byte DFA and muted-literal
// vocabulary when constructing a TokensDFA.
type Config struct {
	// Workers is the number of goroutines the parallel walker (C5) fans
	// out across the byte-DFA state space. Zero means GOMAXPROCS.
	//
	// Default: 0 (GOMAXPROCS)
	Workers int

	// PruneDeadClasses enables the dead-byte/class analyzer (C3): tokens
	// with a byte in a dead class are dropped before prefix-graph
	// construction instead of being walked and rejected at every state.
	//
	// Default: true
	PruneDeadClasses bool

	// MuteLiterals enables the literal muter (C1). Disabling it skips
	// ghost-token synthesis entirely and builds the automaton over the
	// pattern and vocabulary as given.
	//
	// Default: true
	MuteLiterals bool

	// GhostPrefixFallbacks is the ordered set of alternative ghost prefix
	// bytes tried when the default (0x1C) collides with the pattern's own
	// live byte set.
	//
	// Default: {0x1D, 0x1E, 0x1F}
	GhostPrefixFallbacks []byte
}

// DefaultConfig returns a Config with sensible defaults: dead-class
// pruning and literal muting both enabled, worker count left to
// GOMAXPROCS.
func DefaultConfig() Config {
	return Config{
		Workers:              0,
		PruneDeadClasses:     true,
		MuteLiterals:         true,
		GhostPrefixFallbacks: []byte{0x1D, 0x1E, 0x1F},
	}
}

// Validate checks that c's fields are in range.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// WithWorkers returns a copy of c with Workers set.
func (c Config) WithWorkers(n int) Config {
	c.Workers = n
	return c
}

// WithPruneDeadClasses returns a copy of c with PruneDeadClasses set.
func (c Config) WithPruneDeadClasses(enabled bool) Config {
	c.PruneDeadClasses = enabled
	return c
}

// WithMuteLiterals returns a copy of c with MuteLiterals set.
func (c Config) WithMuteLiterals(enabled bool) Config {
	c.MuteLiterals = enabled
	return c
}

// WithGhostPrefixFallbacks returns a copy of c with GhostPrefixFallbacks
// set.
func (c Config) WithGhostPrefixFallbacks(fallbacks []byte) Config {
	c.GhostPrefixFallbacks = fallbacks
	return c
}
