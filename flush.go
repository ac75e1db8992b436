package mimoring

import "github.com/agilira/mimoring/token"

// SendFlushEvent implements spec.md §4.6: it enqueues one flush sentinel
// into the filled queue, sets the writer-side flushSent latch, and wakes
// any writer currently parked on the empty queue under overwrite=false so
// the "every blocked session on this buffer returns no token within
// bounded time" contract holds even for a writer-only buffer that has no
// reader to ever consume the sentinel from filled and set flushReceived
// (spec.md §4.6 step 3).
//
// Calling SendFlushEvent more than once is idempotent (spec.md §8 "Flush
// idempotence"): flushSent is a one-way latch, and every call after the
// first still re-enqueues a sentinel (so any reader that hasn't seen one
// yet still will), but no call ever produces a new token into filled once
// flush_received is true — see acquireWrite in session.go, which treats
// writerShouldCancel as the wake-up reason for blocked writers, not as a
// reason to stop the sentinel relay.
func (b *Buffer) SendFlushEvent() {
	b.flushSent.Store(true)
	b.filled.Put(token.Flush)
	b.empty.PokeWaiters()
}
