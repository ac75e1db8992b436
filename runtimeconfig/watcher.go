// Package runtimeconfig provides optional, hot-reloadable tunables that a
// host application can read through Watcher.Current or the onChange
// callback. It never touches an already-open mimoring.Buffer — Buffer is
// immutable after construction (spec.md §3) — and mimoring.NewBuffer does
// not read these tunables either: they take effect only where the host
// copies them into a mimoring.Config or shm.Config itself.
//
// Backed by github.com/agilira/argus, the file-watching configuration
// library declared (as an indirect dependency) by the teacher's own
// examples/hot_reload example. No source for argus was retrievable from
// the example pool, so this package deliberately uses the smallest,
// most conventional surface for this class of library and isolates every
// argus call here: nothing in the core mimoring package imports this
// package, so a wrong call here cannot affect the buffer primitive
// itself, only this optional convenience layer (see DESIGN.md, Open
// Questions #4).
package runtimeconfig

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// Tunables are the runtime-adjustable defaults a host application may
// want to retune without a restart.
type Tunables struct {
	// DefaultOverwrite is an overwrite policy for the host to use. It is
	// not applied by NewBuffer: a nil Config.Overwrite always means true.
	DefaultOverwrite bool `json:"default_overwrite"`
	// StatsSampleInterval suggests how often a host's monitoring loop
	// should poll GetStats(); mimoring itself does not use this value,
	// it is advisory for the embedding application.
	StatsSampleInterval time.Duration `json:"stats_sample_interval"`
	// ShmRetryCount/ShmRetryDelay are retry parameters for named segments,
	// matching shm.Config's RetryCount/RetryDelay. mimoring.Config has no
	// retry fields and NewBuffer does not read these; shm.New falls back
	// to its own defaults of 3 attempts and 10ms when they are zero.
	ShmRetryCount int           `json:"shm_retry_count"`
	ShmRetryDelay time.Duration `json:"shm_retry_delay"`
}

// DefaultTunables matches mimoring's compiled-in defaults, so a process
// that never starts a Watcher behaves exactly as spec.md describes.
var DefaultTunables = Tunables{
	DefaultOverwrite:    true,
	StatsSampleInterval: time.Second,
	ShmRetryCount:       3,
	ShmRetryDelay:       10 * time.Millisecond,
}

// Watcher holds the current Tunables and keeps them in sync with a JSON
// file on disk via argus's file watcher.
type Watcher struct {
	mu       sync.RWMutex
	current  Tunables
	watcher  *argus.Watcher
	onChange func(Tunables)
}

// Watch starts watching path for changes and returns a Watcher seeded
// with its initial contents (or DefaultTunables if path does not exist
// yet). onChange, if non-nil, is called with the new Tunables once for
// the initial contents (when the file exists and parses) and then every
// time the file changes and is successfully parsed; malformed updates are
// ignored and the previous Tunables remain in effect.
func Watch(path string, onChange func(Tunables)) (*Watcher, error) {
	w := &Watcher{current: DefaultTunables, onChange: onChange}

	if data, err := os.ReadFile(path); err == nil {
		_ = w.apply(data)
	}

	aw, err := argus.New(argus.Config{PollInterval: 2 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := aw.Watch(path, func(event argus.ChangeEvent) {
		data, readErr := os.ReadFile(event.Path)
		if readErr != nil {
			return
		}
		_ = w.apply(data)
	}); err != nil {
		return nil, err
	}

	if err := aw.Start(); err != nil {
		return nil, err
	}

	w.watcher = aw
	return w, nil
}

func (w *Watcher) apply(data []byte) error {
	var t Tunables
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	w.mu.Lock()
	w.current = t
	w.mu.Unlock()
	if w.onChange != nil {
		w.onChange(t)
	}
	return nil
}

// Current returns the Tunables in effect right now.
func (w *Watcher) Current() Tunables {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Stop stops watching the file. Already-applied Tunables remain in
// effect.
func (w *Watcher) Stop() error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Stop()
}
