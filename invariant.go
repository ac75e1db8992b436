package mimoring

import "fmt"

// panicInvariant aborts the process on a detected InvariantViolation
// (spec.md §7): a token returned that was never issued, a double
// release, or an out-of-range index. These indicate memory corruption or
// a programming error in the caller, not a recoverable condition, so
// mimoring does not attempt to convert them into an error value — it
// panics. WithWriter/WithReader/WithObserver treat this panic like any
// other raised in a session body: they release the session's token and
// re-raise the same value, so it is never turned into an error (see
// runSessionBody in session.go).
func panicInvariant(msg string, args ...any) {
	panic(invariantViolation(fmt.Sprintf(msg, args...)))
}

// invariantViolation marks a panic value as an InvariantViolation, so a
// recovered value can be told apart from an ordinary panic in the
// caller's body. The session helpers do not inspect it.
type invariantViolation string

func (e invariantViolation) Error() string { return "mimoring: invariant violation: " + string(e) }
