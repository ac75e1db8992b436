// Package shm provides the slot storage primitive: a contiguous region
// carved into slot_count equal-sized slots, addressable as zero-copy byte
// windows (spec.md §4.1).
//
// Grounded on the shared-memory mmap pattern from the example pool
// (AlephTX-aleph-tx/feeder/shm/seqlock.go): a file-backed mmap under
// /dev/shm for true cross-process sharing, or an anonymous mmap for
// in-process use (tests, single-process pipelines simulated with
// goroutines).
package shm

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// Mode selects how the backing region is created.
type Mode int

const (
	// ModeAnonymous maps memory private to this process. Suitable for
	// tests and for pipelines where every worker is a goroutine in one
	// process.
	ModeAnonymous Mode = iota
	// ModeNamed maps a file under Dir (default /dev/shm), giving true
	// cross-process visibility: any process mapping the same path sees
	// the same bytes.
	ModeNamed
)

// Config controls how a Store's backing region is created.
type Config struct {
	Mode Mode
	// Dir is the directory ModeNamed segments are created under.
	// Defaults to /dev/shm.
	Dir string
	// RetryCount/RetryDelay bound transient failures opening the backing
	// file (antivirus-equivalent transient locks on /dev/shm under heavy
	// load), mirroring the teacher's RetryFileOperation convention.
	RetryCount int
	RetryDelay time.Duration
}

// Store is one contiguous shared-memory region, carved into SlotCount
// equal-sized slots of SlotBytes each.
type Store struct {
	name      string
	slotCount int
	slotBytes int
	data      []byte
	path      string // empty for ModeAnonymous
	mode      Mode
}

// New creates the backing region for name and carves it into slotCount
// slots of slotBytes bytes. slotCount and slotBytes must both be positive.
// For ModeNamed the backing file is created exclusively: if it already
// exists, New returns an error instead of reusing or truncating it.
func New(name string, slotCount, slotBytes int, cfg Config) (*Store, error) {
	if slotCount <= 0 {
		return nil, fmt.Errorf("shm: slot_count must be positive, got %d", slotCount)
	}
	if slotBytes <= 0 {
		return nil, fmt.Errorf("shm: slot_bytes must be positive, got %d", slotBytes)
	}

	size := slotCount * slotBytes

	switch cfg.Mode {
	case ModeNamed:
		return newNamed(name, slotCount, slotBytes, size, cfg)
	default:
		return newAnonymous(name, slotCount, slotBytes, size)
	}
}

func newAnonymous(name string, slotCount, slotBytes, size int) (*Store, error) {
	data, err := syscall.Mmap(-1, 0, size,
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_SHARED|syscall.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("shm: anonymous mmap failed for %q: %w", name, err)
	}
	return &Store{name: name, slotCount: slotCount, slotBytes: slotBytes, data: data, mode: ModeAnonymous}, nil
}

func newNamed(name string, slotCount, slotBytes, size int, cfg Config) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "/dev/shm"
	}
	retryCount := cfg.RetryCount
	if retryCount <= 0 {
		retryCount = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 10 * time.Millisecond
	}

	path := filepath.Join(dir, "mimoring-"+name)

	var f *os.File
	err := retry(func() error {
		var openErr error
		f, openErr = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600) // #nosec G304 -- path built from validated internal name
		return openErr
	}, retryCount, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("shm: name collision or mapping refused for %q: %w", path, err)
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("shm: failed to size segment %q: %w", path, err)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, size,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("shm: mmap failed for %q: %w", path, err)
	}

	return &Store{name: name, slotCount: slotCount, slotBytes: slotBytes, data: data, path: path, mode: ModeNamed}, nil
}

func retry(op func() error, count int, delay time.Duration) error {
	var lastErr error
	for i := 0; i < count; i++ {
		if err := op(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i < count-1 {
			time.Sleep(delay)
		}
	}
	return lastErr
}

// SlotCount returns the number of slots in the store.
func (s *Store) SlotCount() int { return s.slotCount }

// SlotBytes returns the per-slot byte width.
func (s *Store) SlotBytes() int { return s.slotBytes }

// Slot returns the raw byte window for slot index i. The returned slice
// aliases the shared-memory region directly: no copy is made. It is only
// safe to mutate while the caller holds a write-session for index i
// (spec.md §4.1).
func (s *Store) Slot(i int) []byte {
	if i < 0 || i >= s.slotCount {
		panic(fmt.Sprintf("shm: slot index %d out of range [0,%d)", i, s.slotCount))
	}
	off := i * s.slotBytes
	return s.data[off : off+s.slotBytes]
}

// Close unmaps the region and, for ModeNamed, unlinks the backing file.
// It is an error to call Close while any session holds a token into this
// store (enforced by the owning Buffer, not here).
func (s *Store) Close() error {
	if s.data == nil {
		return nil
	}
	err := syscall.Munmap(s.data)
	s.data = nil
	if s.mode == ModeNamed && s.path != "" {
		if rmErr := os.Remove(s.path); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
