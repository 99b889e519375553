package tokendfa

import "fmt"

// ErrorKind classifies the ways building or serving a TokensDFA can fail.
type ErrorKind uint8

const (
	// InvalidRegex indicates the pattern failed to compile, or that
	// literal muting could not find a safe ghost prefix byte.
	InvalidRegex ErrorKind = iota

	// EmptyLanguage indicates the byte DFA accepts no strings at all, so
	// no vocabulary token sequence could ever be generated.
	EmptyLanguage

	// TokenizationMismatch indicates a literal run could not be fully
	// covered by vocabulary tokens; the run is left un-muted, and this
	// kind is reported only through non-fatal diagnostics, never from
	// Build itself.
	TokenizationMismatch

	// RejectedTransition indicates a Guide was asked to advance on a
	// token id the current state does not allow.
	RejectedTransition

	// InvalidVocabulary indicates the vocabulary failed validation (an
	// empty token, an out-of-range end-of-sequence id).
	InvalidVocabulary

	// AlphabetExhausted indicates every candidate ghost prefix byte
	// collided with the pattern's own live byte set.
	AlphabetExhausted

	// InvalidConfig indicates a Config field was out of range.
	InvalidConfig

	// TransitionConflict indicates the parallel walker recorded two
	// different destinations for the same (state, token) pair — a
	// determinism invariant violation that must never pass silently.
	TransitionConflict
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidRegex:
		return "InvalidRegex"
	case EmptyLanguage:
		return "EmptyLanguage"
	case TokenizationMismatch:
		return "TokenizationMismatch"
	case RejectedTransition:
		return "RejectedTransition"
	case InvalidVocabulary:
		return "InvalidVocabulary"
	case AlphabetExhausted:
		return "AlphabetExhausted"
	case InvalidConfig:
		return "InvalidConfig"
	case TransitionConflict:
		return "TransitionConflict"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// Sentinel *BuildError values, one per kind Build itself can return,
// usable with errors.Is(err, tokendfa.ErrEmptyLanguage) the same way
// errors.Is(err, lazy.ErrCacheFull) works against the teacher's DFAError.
var (
	ErrInvalidRegex       = &BuildError{Kind: InvalidRegex, Message: "pattern failed to compile"}
	ErrEmptyLanguage      = &BuildError{Kind: EmptyLanguage, Message: "pattern's byte DFA accepts no strings"}
	ErrInvalidVocabulary  = &BuildError{Kind: InvalidVocabulary, Message: "vocabulary failed validation"}
	ErrAlphabetExhausted  = &BuildError{Kind: AlphabetExhausted, Message: "no ghost prefix byte is free of the pattern's live byte set"}
	ErrInvalidConfig      = &BuildError{Kind: InvalidConfig, Message: "config field out of range"}
	ErrTransitionConflict = &BuildError{Kind: TransitionConflict, Message: "two tokens disagreed about a shared transition's destination"}
)

// ErrRejectedTransition is the sentinel *GuideError a Guide's Advance call
// returns when the current state does not allow the given token.
var ErrRejectedTransition = &GuideError{Kind: RejectedTransition, Message: "token is not allowed from the current state"}

// BuildError reports why Build failed to construct a TokensDFA.
type BuildError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tokendfa: build failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("tokendfa: build failed: %s", e.Message)
}

func (e *BuildError) Unwrap() error { return e.Cause }

func (e *BuildError) Is(target error) bool {
	t, ok := target.(*BuildError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// GuideError reports why a Guide call failed.
type GuideError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *GuideError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tokendfa: guide: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("tokendfa: guide: %s", e.Message)
}

func (e *GuideError) Unwrap() error { return e.Cause }

func (e *GuideError) Is(target error) bool {
	t, ok := target.(*GuideError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
