package shm

import "testing"

func TestNew_RejectsNonPositiveDims(t *testing.T) {
	if _, err := New("x", 0, 16, Config{}); err == nil {
		t.Error("expected error for slot_count <= 0")
	}
	if _, err := New("x", 4, 0, Config{}); err == nil {
		t.Error("expected error for slot_bytes <= 0")
	}
}

func TestAnonymous_SlotWindowsAreDisjointAndSized(t *testing.T) {
	s, err := New("anon-disjoint", 4, 32, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if s.SlotCount() != 4 {
		t.Errorf("SlotCount() = %d, want 4", s.SlotCount())
	}
	if s.SlotBytes() != 32 {
		t.Errorf("SlotBytes() = %d, want 32", s.SlotBytes())
	}

	slots := make([][]byte, 4)
	for i := range slots {
		slots[i] = s.Slot(i)
		if len(slots[i]) != 32 {
			t.Fatalf("slot %d has length %d, want 32", i, len(slots[i]))
		}
	}

	// Writing into one slot must not be visible in another: they must not
	// overlap in the backing mmap region.
	slots[0][0] = 0xAB
	for i := 1; i < 4; i++ {
		if slots[i][0] == 0xAB {
			t.Fatalf("slot %d aliases slot 0", i)
		}
	}
}

func TestAnonymous_SlotAliasesBackingMemory(t *testing.T) {
	s, err := New("anon-alias", 2, 16, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	window := s.Slot(1)
	window[3] = 0x42

	again := s.Slot(1)
	if again[3] != 0x42 {
		t.Error("second Slot(1) call did not observe the earlier write: not zero-copy")
	}
}

func TestSlot_PanicsOutOfRange(t *testing.T) {
	s, err := New("anon-bounds", 2, 8, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range slot index")
		}
	}()
	s.Slot(2)
}

func TestClose_IsSafeAndIdempotentForAnonymous(t *testing.T) {
	s, err := New("anon-close", 2, 8, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got: %v", err)
	}
}
