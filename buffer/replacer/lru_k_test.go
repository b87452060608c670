package replacer

import (
	"testing"

	"daemoncore/types"
)

func TestEvictPrefersLessKByFirstAccess(t *testing.T) {
	r := New(8, 2)

	r.RecordAccess(1, types.AccessUnknown)
	r.RecordAccess(2, types.AccessUnknown)
	r.RecordAccess(3, types.AccessUnknown)
	r.SetEvictable(1, true)
	r.SetEvictable(2, true)
	r.SetEvictable(3, true)

	f, ok := r.Evict()
	if !ok || f != 1 {
		t.Fatalf("expected to evict frame 1 (oldest), got %d ok=%v", f, ok)
	}
}

// Scenario C from the spec: less_k always wins over full_k.
func TestEvictLessKBeatsFullK(t *testing.T) {
	r := New(8, 2)

	r.RecordAccess(1, types.AccessUnknown)
	r.RecordAccess(2, types.AccessUnknown)
	r.RecordAccess(3, types.AccessUnknown)
	r.SetEvictable(1, true)
	r.SetEvictable(2, true)
	r.SetEvictable(3, true)

	if f, ok := r.Evict(); !ok || f != 1 {
		t.Fatalf("expected frame 1 first, got %d ok=%v", f, ok)
	}

	// 2 now has 2 accesses (moves to full_k); 3 still has 1 (stays in less_k).
	r.RecordAccess(2, types.AccessUnknown)

	f, ok := r.Evict()
	if !ok || f != 3 {
		t.Fatalf("expected less_k frame 3 to win over full_k frame 2, got %d ok=%v", f, ok)
	}
}

func TestSetEvictableUntrackedPanics(t *testing.T) {
	r := New(4, 2)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for SetEvictable on untracked frame")
		}
	}()
	r.SetEvictable(0, true)
}

func TestRecordAccessOutOfRangePanics(t *testing.T) {
	r := New(4, 2)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range frame id")
		}
	}()
	r.RecordAccess(10, types.AccessUnknown)
}

func TestSizeCountsOnlyEvictable(t *testing.T) {
	r := New(4, 2)
	r.RecordAccess(0, types.AccessUnknown)
	r.RecordAccess(1, types.AccessUnknown)
	r.SetEvictable(0, true)

	if got := r.Size(); got != 1 {
		t.Fatalf("expected size 1, got %d", got)
	}

	r.SetEvictable(1, true)
	if got := r.Size(); got != 2 {
		t.Fatalf("expected size 2, got %d", got)
	}

	r.SetEvictable(0, false)
	if got := r.Size(); got != 1 {
		t.Fatalf("expected size 1 after pin, got %d", got)
	}
}

func TestEvictOnlyReturnsEvictableFrames(t *testing.T) {
	r := New(4, 2)
	r.RecordAccess(0, types.AccessUnknown)
	r.RecordAccess(1, types.AccessUnknown)
	r.SetEvictable(1, true)

	f, ok := r.Evict()
	if !ok || f != 1 {
		t.Fatalf("expected only evictable frame 1, got %d ok=%v", f, ok)
	}

	if _, ok := r.Evict(); ok {
		t.Fatalf("expected no evictable frames left")
	}
}

func TestRemoveUntracks(t *testing.T) {
	r := New(4, 2)
	r.RecordAccess(0, types.AccessUnknown)
	r.SetEvictable(0, true)
	r.Remove(0)

	if got := r.Size(); got != 0 {
		t.Fatalf("expected size 0 after remove, got %d", got)
	}
	if _, ok := r.Evict(); ok {
		t.Fatalf("expected nothing to evict after remove")
	}
}

func TestFullKTieBreaksByOldestKthAccess(t *testing.T) {
	r := New(4, 2)

	r.RecordAccess(0, types.AccessUnknown) // t=1
	r.RecordAccess(1, types.AccessUnknown) // t=2
	r.RecordAccess(0, types.AccessUnknown) // t=3, 0's 2nd access -> full_k, k-dist from t=3
	r.RecordAccess(1, types.AccessUnknown) // t=4, 1's 2nd access -> full_k, k-dist from t=4
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)

	// Both in full_k; 0's k-th-most-recent access (t=1) is older than 1's (t=2),
	// so 0 has the larger backward k-distance and should be evicted first.
	f, ok := r.Evict()
	if !ok || f != 0 {
		t.Fatalf("expected frame 0 (oldest kth access), got %d ok=%v", f, ok)
	}
}
