// Package ferrors defines the error taxonomy shared across the engine.
//
// Every surfaced error carries a stable Kind so callers (the orchestrator,
// the CLI, the MCP surface) can map it to a response without parsing
// messages.
package ferrors

import "fmt"

// Kind is one of the taxonomy buckets from the error-handling design.
type Kind string

const (
	PathRejected    Kind = "path_rejected"
	NotFound        Kind = "not_found"
	ParseFailure    Kind = "parse_failure"
	StoreError      Kind = "store_error"
	VcsErr          Kind = "vcs_error"
	RegexUnsafe     Kind = "regex_unsafe"
	ConcurrencyLoss Kind = "concurrency_loss"
	IndexNotReady   Kind = "index_not_ready"
)

// Error is the concrete error type for every Kind above.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds a *Error from a format string, no wrapped cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a *Error wrapping an underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	fe, ok := err.(*Error)
	if !ok {
		return false
	}
	return fe.Kind == kind
}

// ExitCode maps err to the CLI exit code from the error handling design:
// 0 success, 2 validation error, 3 commit-failed-but-mutation-survived,
// 4 IO error, 5 store corruption.
func ExitCode(err error, commitFailed bool) int {
	if err == nil {
		if commitFailed {
			return 3
		}
		return 0
	}
	fe, ok := err.(*Error)
	if !ok {
		return 4
	}
	switch fe.Kind {
	case PathRejected, NotFound, ParseFailure, RegexUnsafe:
		return 2
	case StoreError:
		return 5
	default:
		return 4
	}
}
