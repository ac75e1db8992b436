package mimoring

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/agilira/mimoring/dtype"
	"github.com/agilira/mimoring/shm"
	"github.com/agilira/mimoring/token"
)

// Event is reported through Config.OnEvent when something noteworthy but
// non-fatal happens. The only event reported is an error from unmapping
// the shared-memory region during Close (Op "shm_close"). This mirrors the teacher's ErrorCallback func(operation
// string, err error) convention exactly: mimoring has no logging
// dependency of its own, the same way lethe doesn't, and leaves logging
// to the embedding application.
type Event struct {
	Op  string
	Err error
}

// Config holds the immutable construction parameters of a Buffer
// (spec.md §3 "Buffer (immutable after construction)").
type Config struct {
	// Name is a unique string identifier across the process group. The
	// core does not enforce cross-process uniqueness itself — that is
	// the out-of-scope buffer registry's job (spec.md §9) — but Name
	// must be non-empty.
	Name string

	// SlotCount is the number of slots N, N >= 1.
	SlotCount int

	// DataLength is the number of DataDtype elements per slot's data
	// array, >= 1.
	DataLength int

	// DataDtype describes one element of the slot's data array.
	DataDtype *dtype.Dtype

	// Overwrite selects the overwrite policy (spec.md §4.3). nil
	// defaults to true, matching spec.md §3's documented default.
	Overwrite *bool

	// ShmMode and ShmDir control the backing shared-memory region (see
	// package shm). The zero Mode (shm.ModeAnonymous) is appropriate for
	// in-process pipelines and tests; shm.ModeNamed makes the slot memory
	// visible to other processes. The token queues are in-process in
	// either mode (see package token).
	ShmMode shm.Mode
	ShmDir  string

	// OnEvent, if set, is called for non-fatal background events (e.g.
	// an error while unmapping shared memory during Close).
	OnEvent func(Event)
}

// Buffer binds slot storage, the two token queues, the shared counters
// and the construction-time configuration (spec.md §3 "Buffer object").
// All hot-path counters are lock-free atomics, mirroring the teacher's
// Logger: no user-visible lock is ever held across slot I/O, the token
// protocol is the only locking discipline (spec.md §5).
type Buffer struct {
	name       string
	slotCount  int
	dataLength int
	dataDtype  *dtype.Dtype
	metaDtype  *dtype.Dtype
	slotBytes  int
	overwrite  bool

	store  *shm.Store
	empty  *token.Queue
	filled *token.Queue

	eventCount     atomic.Uint64
	overwriteCount atomic.Uint64
	flushReceived  atomic.Bool
	flushSent      atomic.Bool
	liveSessions   atomic.Int64
	closed         atomic.Bool

	clock     *timecache.TimeCache
	onEvent   func(Event)
	closeOnce sync.Once

	statsMu        sync.Mutex
	prevEventCount uint64
	prevStatsAt    time.Time
}

// NewBuffer validates cfg and constructs a Buffer: the shared-memory
// region is allocated and carved into cfg.SlotCount slots, and the
// "empty" queue starts full with every index 0..SlotCount (spec.md §3
// "Lifecycle"). ConfigError and SharedMemoryError are the only error
// kinds NewBuffer can return (spec.md §7): both are raised only here,
// never from a session in flight.
func NewBuffer(cfg Config) (*Buffer, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrConfig)
	}
	if cfg.SlotCount <= 0 {
		return nil, fmt.Errorf("%w: slot_count must be positive, got %d", ErrConfig, cfg.SlotCount)
	}
	if cfg.DataLength <= 0 {
		return nil, fmt.Errorf("%w: data_length must be positive, got %d", ErrConfig, cfg.DataLength)
	}
	if cfg.DataDtype == nil {
		return nil, fmt.Errorf("%w: data_dtype is required", ErrConfig)
	}

	overwrite := true
	if cfg.Overwrite != nil {
		overwrite = *cfg.Overwrite
	}

	slotBytes := cfg.DataLength*cfg.DataDtype.Size() + dtype.MetadataDtype.Size()

	store, err := shm.New(cfg.Name, cfg.SlotCount, slotBytes, shm.Config{
		Mode: cfg.ShmMode,
		Dir:  cfg.ShmDir,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSharedMemory, err)
	}

	b := &Buffer{
		name:       cfg.Name,
		slotCount:  cfg.SlotCount,
		dataLength: cfg.DataLength,
		dataDtype:  cfg.DataDtype,
		metaDtype:  dtype.MetadataDtype,
		slotBytes:  slotBytes,
		overwrite:  overwrite,
		store:      store,
		empty:      token.New(cfg.SlotCount),
		filled:     token.New(cfg.SlotCount),
		onEvent:    cfg.OnEvent,
		clock:      timecache.NewWithResolution(time.Millisecond),
	}

	for i := 0; i < cfg.SlotCount; i++ {
		b.empty.Put(token.Token(i))
	}

	b.prevStatsAt = b.clock.CachedTime()

	return b, nil
}

// Name, SlotCount, DataLength, Overwrite, SlotBytes are introspection
// accessors for external collaborators (the out-of-scope setup loader,
// the buffer manager UI) that need to describe a Buffer without reaching
// into its internals.
func (b *Buffer) Name() string            { return b.name }
func (b *Buffer) SlotCount() int          { return b.slotCount }
func (b *Buffer) DataLength() int         { return b.dataLength }
func (b *Buffer) Overwrite() bool         { return b.overwrite }
func (b *Buffer) SlotBytes() int          { return b.slotBytes }
func (b *Buffer) DataDtype() *dtype.Dtype { return b.dataDtype }

// FlushReceived reports whether a flush sentinel has been consumed by a
// reader on this buffer (spec.md §3).
func (b *Buffer) FlushReceived() bool { return b.flushReceived.Load() }

func (b *Buffer) reportEvent(op string, err error) {
	if b.onEvent != nil {
		b.onEvent(Event{Op: op, Err: err})
	}
}

// Close tears down the buffer: it unmaps (and, for named segments,
// unlinks) the shared-memory region. It is an error to tear down while
// any session is live (spec.md §5 "Resource lifecycle"), and calling
// Close more than once is a safe no-op after the first successful call,
// matching the teacher's sync.Once-guarded Logger.Close.
func (b *Buffer) Close() error {
	if b.liveSessions.Load() > 0 {
		return ErrSessionsLive
	}
	if b.closed.Load() {
		return nil
	}

	var closeErr error
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		if b.clock != nil {
			b.clock.Stop()
		}
		if err := b.store.Close(); err != nil {
			b.reportEvent("shm_close", err)
			closeErr = err
		}
	})
	return closeErr
}
