// Package orchestrator drives the read -> validate -> transform -> write ->
// record -> commit lifecycle for every mutating operation on a vault file,
// and exposes the typed Operation variant the CLI and MCP surfaces call
// into, following the teacher's narrow-interface, typed-result style.
package orchestrator

import "github.com/flywheel-dev/flywheel/internal/ferrors"

// ErrorKind and EngineError are aliases onto the shared ferrors taxonomy so
// every package (CLI, MCP surface, orchestrator) switches on the same Kind
// values instead of keeping parallel error types.
type ErrorKind = ferrors.Kind

type EngineError = ferrors.Error

const (
	PathRejected    = ferrors.PathRejected
	NotFound        = ferrors.NotFound
	ParseFailure    = ferrors.ParseFailure
	StoreError      = ferrors.StoreError
	VcsErrorKind    = ferrors.VcsErr
	RegexUnsafe     = ferrors.RegexUnsafe
	ConcurrencyLoss = ferrors.ConcurrencyLoss
	IndexNotReady   = ferrors.IndexNotReady
)

func newErr(kind ErrorKind, format string, args ...any) *EngineError {
	return ferrors.Newf(kind, format, args...)
}

// ExitCode maps an EngineError's kind (nil meaning success) to the CLI exit
// code contract: 0 success, 2 validation error, 3 commit failed but
// mutation succeeded, 4 IO error, 5 store corruption.
func ExitCode(err error, commitFailed bool) int {
	return ferrors.ExitCode(err, commitFailed)
}
