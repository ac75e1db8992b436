package mimoring

import (
	"testing"

	"github.com/agilira/mimoring/dtype"
)

func mustDtype(t *testing.T, descriptor string) *dtype.Dtype {
	t.Helper()
	d, err := dtype.Parse(descriptor)
	if err != nil {
		t.Fatalf("dtype.Parse(%q): %v", descriptor, err)
	}
	return d
}

func newTestBuffer(t *testing.T, name string, slotCount, dataLength int, descriptor string, overwrite bool) *Buffer {
	t.Helper()
	b, err := NewBuffer(Config{
		Name:       name,
		SlotCount:  slotCount,
		DataLength: dataLength,
		DataDtype:  mustDtype(t, descriptor),
		Overwrite:  &overwrite,
	})
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	t.Cleanup(func() {
		// Best-effort: tests that intentionally leave sessions open handle
		// their own Close.
		_ = b.Close()
	})
	return b
}

func TestNewBuffer_ValidatesConfig(t *testing.T) {
	d := mustDtype(t, "value:f32")

	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty name", Config{Name: "", SlotCount: 1, DataLength: 1, DataDtype: d}},
		{"zero slot count", Config{Name: "x", SlotCount: 0, DataLength: 1, DataDtype: d}},
		{"zero data length", Config{Name: "x", SlotCount: 1, DataLength: 0, DataDtype: d}},
		{"nil dtype", Config{Name: "x", SlotCount: 1, DataLength: 1, DataDtype: nil}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewBuffer(tc.cfg); err == nil {
				t.Error("expected a ConfigError")
			}
		})
	}
}

func TestNewBuffer_DefaultsOverwriteTrue(t *testing.T) {
	b, err := NewBuffer(Config{
		Name:       "defaults",
		SlotCount:  2,
		DataLength: 1,
		DataDtype:  mustDtype(t, "value:f32"),
	})
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	defer b.Close()

	if !b.Overwrite() {
		t.Error("expected default overwrite policy to be true")
	}
}

func TestBuffer_EmptyQueueStartsFullOfAllSlots(t *testing.T) {
	b := newTestBuffer(t, "startup", 4, 1, "value:f32", true)
	stats := b.GetStats()
	if stats.EmptyCount != 4 {
		t.Errorf("EmptyCount = %d, want 4", stats.EmptyCount)
	}
	if stats.FilledCount != 0 {
		t.Errorf("FilledCount = %d, want 0", stats.FilledCount)
	}
}

func TestClose_FailsWithLiveSession(t *testing.T) {
	b := newTestBuffer(t, "live-session", 2, 1, "value:f32", true)

	s, ok := b.acquireWrite()
	if !ok {
		t.Fatal("expected a write session")
	}

	if err := b.Close(); err != ErrSessionsLive {
		t.Errorf("Close() = %v, want ErrSessionsLive", err)
	}

	s.Release()
	if err := b.Close(); err != nil {
		t.Errorf("Close after release: %v", err)
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	b := newTestBuffer(t, "idempotent-close", 1, 1, "value:f32", true)
	if err := b.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got: %v", err)
	}
}
