// Package conv provides narrowing integer conversions that panic on
// overflow instead of silently truncating, for the handful of places the
// index casts between the signed int internally used for Go indices and the
// compact fixed-width integers stored in NFA/DFA state ids and wire format.
package conv

import "math"

// IntToUint32 converts n to uint32, panicking if it doesn't fit. A failure
// here means the automaton grew past what a 32-bit state id can address.
func IntToUint32(n int) uint32 {
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("conv: int out of uint32 range")
	}
	return uint32(n)
}

// Uint64ToUint32 converts n to uint32, panicking if it doesn't fit.
func Uint64ToUint32(n uint64) uint32 {
	if n > math.MaxUint32 {
		panic("conv: uint64 out of uint32 range")
	}
	return uint32(n)
}
