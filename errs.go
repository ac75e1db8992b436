package mimoring

import (
	goerrors "github.com/agilira/go-errors"
)

// Error kinds per spec.md §7. ConfigError and SharedMemoryError are raised
// only at construction time; InvariantViolation is fatal and is never
// returned as an error value (see invariant.go); NoTokenAvailable is not
// an error at all, it is the delivered=false return of the session
// helpers.
var (
	// ErrConfig wraps construction-time configuration problems: an empty
	// name, a non-positive slot_count or data_length, or a nil dtype.
	// NewBuffer does not check names for duplicates; with shm.ModeNamed a
	// name already present on disk surfaces as ErrSharedMemory.
	ErrConfig = goerrors.New("MIMORING_CONFIG", "invalid buffer configuration")

	// ErrSharedMemory wraps construction-time shared-memory mapping
	// failures: the OS refusing the mapping, or a name collision on
	// create.
	ErrSharedMemory = goerrors.New("MIMORING_SHM", "shared memory error")

	// ErrClosed identifies a Buffer that has already been torn down. No
	// Buffer method returns it: sessions do not check whether the Buffer
	// is closed, and a repeated Close returns nil.
	ErrClosed = goerrors.New("MIMORING_CLOSED", "buffer is closed")

	// ErrSessionsLive is returned by Close when a session is still
	// checked out, since spec.md §5 requires teardown to fail in that
	// case rather than silently invalidate live views.
	ErrSessionsLive = goerrors.New("MIMORING_SESSIONS_LIVE", "cannot close buffer with live sessions")
)
