package store

import (
	"strconv"
	"testing"
)

func TestSeenStore_MarkSeen(t *testing.T) {
	s, err := NewSeenStore(100, 0.001)
	if err != nil {
		t.Fatalf("NewSeenStore() error = %v", err)
	}

	if !s.MarkSeen("onebot:1:42") {
		t.Error("first MarkSeen() = false, want true")
	}
	if s.MarkSeen("onebot:1:42") {
		t.Error("second MarkSeen() = true, want false")
	}
	if !s.MarkSeen("onebot:1:43") {
		t.Error("MarkSeen() for a new id = false")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestSeenStore_EvictsOldest(t *testing.T) {
	s, err := NewSeenStore(3, 0.01)
	if err != nil {
		t.Fatalf("NewSeenStore() error = %v", err)
	}

	for i := 0; i < 4; i++ {
		s.MarkSeen(strconv.Itoa(i))
	}

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if !s.MarkSeen("0") {
		t.Error("evicted id should be treated as new")
	}
	if s.MarkSeen("3") {
		t.Error("recent id should still be known")
	}
}

func TestSeenStore_RebuildKeepsRecent(t *testing.T) {
	s, err := NewSeenStore(10, 0.01)
	if err != nil {
		t.Fatalf("NewSeenStore() error = %v", err)
	}

	for i := 0; i < 100; i++ {
		if !s.MarkSeen("id-" + strconv.Itoa(i)) {
			t.Fatalf("MarkSeen(id-%d) = false on first sight", i)
		}
	}

	for i := 90; i < 100; i++ {
		if s.MarkSeen("id-" + strconv.Itoa(i)) {
			t.Errorf("MarkSeen(id-%d) = true after rebuild, want false", i)
		}
	}
}

func TestNewSeenStore_ClampsCapacity(t *testing.T) {
	s, err := NewSeenStore(0, 0.01)
	if err != nil {
		t.Fatalf("NewSeenStore() error = %v", err)
	}
	if !s.MarkSeen("a") || s.MarkSeen("a") {
		t.Error("store with clamped capacity should still deduplicate")
	}
}
