package mimoring

import (
	"github.com/agilira/mimoring/token"
)

// sessionKind distinguishes the three access roles for diagnostics only;
// it does not change queue behavior beyond what's implemented in
// acquireWrite/acquireRead/acquireObserve below.
type sessionKind uint8

const (
	kindWriter sessionKind = iota
	kindReader
	kindObserver
)

// Session is a checked-out token on a Buffer. Go has no destructors, so
// the "scoped session" of spec.md §9 is implemented the way the teacher
// implements scope-bound cleanup (sync.Once-guarded Logger.Close,
// deferred MPSCConsumer.stop): a value with a Release method the caller
// is expected to defer, plus the WithWriter/WithReader/WithObserver
// helpers below that guarantee the defer is actually there.
type Session struct {
	buf      *Buffer
	kind     sessionKind
	index    int
	view     View
	released bool
}

// View returns the zero-copy view for this session's slot.
func (s *Session) View() View { return s.view }

// Release returns the token to the buffer, exactly once. Calling Release
// more than once is an InvariantViolation (spec.md §7 "double release"):
// it indicates a programming error, not a recoverable condition.
func (s *Session) Release() {
	if s.released {
		panicInvariant("token for slot %d released twice", s.index)
	}
	s.released = true
	s.buf.liveSessions.Add(-1)

	switch s.kind {
	case kindWriter:
		s.buf.returnWriteToken(s)
	case kindReader:
		s.buf.empty.Put(token.Token(s.index))
	case kindObserver:
		s.buf.filled.Put(token.Token(s.index))
	}
}

// acquireWrite implements spec.md §4.3 get_write_token. Once flush has
// been observed by a reader, or SendFlushEvent has been called at all
// (spec.md §4.6 step 3's writer-only shutdown case, where no reader ever
// consumes the sentinel), every subsequent call returns no token (spec.md
// §4.6 step 4), regardless of what's sitting in the queues.
func (b *Buffer) acquireWrite() (*Session, bool) {
	if b.writerShouldCancel() {
		return nil, false
	}

	if tok, ok := b.empty.GetNonblocking(); ok {
		return b.newSession(kindWriter, int(tok)), true
	}

	if b.overwrite {
		if tok, ok := b.filled.GetNonblocking(); ok {
			if tok == token.Flush {
				// A flush sentinel reached the head of filled at the
				// moment this writer tried to reclaim a slot. Put it
				// back for any reader still to come and fall through
				// to the blocking path below, which will cancel
				// immediately since flushSent is now set.
				b.filled.Put(token.Flush)
			} else {
				b.overwriteCount.Add(1)
				return b.newSession(kindWriter, int(tok)), true
			}
		}
	}

	tok, ok := b.empty.GetBlocking(b.writerShouldCancel)
	if !ok {
		return nil, false
	}
	return b.newSession(kindWriter, int(tok)), true
}

// writerShouldCancel reports whether a writer should stop waiting for a
// token: either a reader has already consumed a flush sentinel, or
// SendFlushEvent has been called at all. The latter covers a writer-only
// buffer with no reader to ever consume the sentinel from filled — without
// it, a writer blocked on empty under overwrite=false would wait forever
// for a flushReceived that nothing will ever set (spec.md §4.6 step 3).
func (b *Buffer) writerShouldCancel() bool {
	return b.flushReceived.Load() || b.flushSent.Load()
}

// acquireRead implements spec.md §4.4 get_read_token.
func (b *Buffer) acquireRead() (*Session, bool) {
	tok, ok := b.filled.GetBlocking(nil)
	if !ok {
		// GetBlocking(nil) never cancels; unreachable, kept for symmetry.
		return nil, false
	}

	if tok == token.Flush {
		b.flushReceived.Store(true)
		// Re-broadcast so peer readers on this buffer also observe it
		// (spec.md §4.4 step 2), and poke any writers parked on empty
		// under overwrite=false (spec.md §4.6).
		b.filled.Put(token.Flush)
		b.empty.PokeWaiters()
		return nil, false
	}

	return b.newSession(kindReader, int(tok)), true
}

// acquireObserve implements spec.md §4.5 get_observe_token.
func (b *Buffer) acquireObserve() (*Session, bool) {
	tok, ok := b.filled.GetNonblocking()
	if !ok {
		return nil, false
	}
	if tok == token.Flush {
		b.filled.Put(token.Flush)
		return nil, false
	}
	return b.newSession(kindObserver, int(tok)), true
}

func (b *Buffer) newSession(kind sessionKind, index int) *Session {
	raw := b.store.Slot(index)
	v := newView(b.dataDtype, b.dataLength, index, raw)
	b.liveSessions.Add(1)
	return &Session{buf: b, kind: kind, index: index, view: v}
}

// returnWriteToken implements spec.md §4.3 return_write_token: stamp the
// buffer-assigned counter and (if the caller left it at zero) a
// timestamp, then hand the slot to the filled queue.
func (b *Buffer) returnWriteToken(s *Session) {
	count := b.eventCount.Add(1)

	if err := s.view.Meta.SetUint64("counter", count); err != nil {
		panicInvariant("metadata dtype missing counter field: %v", err)
	}

	if ts, err := s.view.Meta.Uint64("timestamp_ns"); err == nil && ts == 0 {
		now := b.clock.CachedTime()
		_ = s.view.Meta.SetUint64("timestamp_ns", uint64(now.UnixNano())) // #nosec G115 -- UnixNano is positive for any realistic wall clock
	}

	b.filled.Put(token.Token(s.index))
}

// WithWriter acquires a writer session, runs fn against its View, and
// always releases the token — on normal return, on fn returning an
// error, and on fn panicking (spec.md §7 "session scopes always return
// the token on exit, even if the body failed; the body's error
// propagates outward unchanged after token release"). delivered is false
// only when the buffer has no token to give because SendFlushEvent has
// been called or a reader has consumed a flush sentinel (spec.md §4.3
// step 4); in that case fn is not called and err is nil.
func (b *Buffer) WithWriter(fn func(View) error) (delivered bool, err error) {
	s, ok := b.acquireWrite()
	if !ok {
		return false, nil
	}
	return true, runSessionBody(s, fn)
}

// WithReader is WithWriter's counterpart for spec.md §4.4: delivered is
// false when the call observed (and re-broadcast) a flush sentinel
// instead of a real token.
func (b *Buffer) WithReader(fn func(View) error) (delivered bool, err error) {
	s, ok := b.acquireRead()
	if !ok {
		return false, nil
	}
	return true, runSessionBody(s, fn)
}

// WithObserver is WithWriter's counterpart for spec.md §4.5: delivered is
// false whenever there is nothing to observe right now (empty filled
// queue, or only a flush sentinel present) — the observer must tolerate
// misses by design.
func (b *Buffer) WithObserver(fn func(View) error) (delivered bool, err error) {
	s, ok := b.acquireObserve()
	if !ok {
		return false, nil
	}
	return true, runSessionBody(s, fn)
}

// runSessionBody runs fn under defer+recover so the token is released on
// every exit path — normal return, fn returning an error, or fn
// panicking — before the panic (if any) is re-raised (spec.md §7:
// "session scopes always return the token on exit ... the body's error
// propagates outward unchanged after token release").
func runSessionBody(s *Session, fn func(View) error) (err error) {
	defer func() {
		r := recover()
		s.Release()
		if r != nil {
			panic(r)
		}
	}()

	return fn(s.View())
}
