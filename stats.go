package mimoring

import "fmt"

// StatsRecord is the snapshot returned by GetStats (spec.md §4.7). Rate
// and elapsed time are computed from deltas against the previous call's
// counter/timestamp, using the buffer's own cached clock — the same
// pattern the teacher uses for Logger.Stats()'s latency accounting.
type StatsRecord struct {
	EventCount       uint64  `json:"event_count"`
	OverwriteCount   uint64  `json:"overwrite_count"`
	FilledCount      int     `json:"filled_count"`
	EmptyCount       int     `json:"empty_count"`
	FlushReceived    bool    `json:"flush_received"`
	RateHzSinceLast  float64 `json:"rate_hz_since_last_call"`
	TimeSinceLastSec float64 `json:"time_since_last_call_s"`
}

// String renders a one-line operator-friendly summary, for quick
// inspection from a CLI or a log line.
func (s StatsRecord) String() string {
	return fmt.Sprintf(
		"events=%d overwrites=%d filled=%d empty=%d flush=%t rate=%.1fHz elapsed=%.3fs",
		s.EventCount, s.OverwriteCount, s.FilledCount, s.EmptyCount,
		s.FlushReceived, s.RateHzSinceLast, s.TimeSinceLastSec,
	)
}

// GetStats returns a best-effort-consistent snapshot (spec.md §4.7):
// individual fields are read without a global lock, only statsMu guards
// the small previous-call bookkeeping needed for the rate computation.
func (b *Buffer) GetStats() StatsRecord {
	eventCount := b.eventCount.Load()
	overwriteCount := b.overwriteCount.Load()
	filledCount := b.filled.Len()
	emptyCount := b.empty.Len()
	flushReceived := b.flushReceived.Load()

	now := b.clock.CachedTime()

	b.statsMu.Lock()
	elapsed := now.Sub(b.prevStatsAt).Seconds()
	delta := eventCount - b.prevEventCount
	b.prevStatsAt = now
	b.prevEventCount = eventCount
	b.statsMu.Unlock()

	var rate float64
	if elapsed > 0 {
		rate = float64(delta) / elapsed
	}

	return StatsRecord{
		EventCount:       eventCount,
		OverwriteCount:   overwriteCount,
		FilledCount:      filledCount,
		EmptyCount:       emptyCount,
		FlushReceived:    flushReceived,
		RateHzSinceLast:  rate,
		TimeSinceLastSec: elapsed,
	}
}
