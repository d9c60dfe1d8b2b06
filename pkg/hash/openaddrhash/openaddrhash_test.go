package openaddrhash

import (
	"testing"

	"github.com/gaarutyunov/concurrent-collections/internal/ckvtest"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

func TestBasic(t *testing.T) {
	ckvtest.BasicSet(t, New(16))
}

func TestRoundTrip(t *testing.T) {
	ckvtest.RoundTrip(t, New(16), 0, 500)
}

func TestConcurrentDisjointRange(t *testing.T) {
	ckvtest.ConcurrentDisjointRange(t, New(16), 10, 200)
}

// TestTombstoneDoesNotBlockProbe: removing a key in the middle of a probe
// chain must not make a later key in the same chain unreachable, since
// find/delete stop scanning at the first truly-empty slot, not the first
// tombstone.
func TestTombstoneDoesNotBlockProbe(t *testing.T) {
	h := New(8)
	for k := 1; k <= 6; k++ {
		if !h.Insert(ckv.Key(k), ckv.Value(k)) {
			t.Fatalf("insert(%d) should succeed", k)
		}
	}
	if _, ok := h.Remove(3); !ok {
		t.Fatal("remove(3) should succeed")
	}
	for _, k := range []ckv.Key{1, 2, 4, 5, 6} {
		if !h.Contains(k) {
			t.Fatalf("contains(%d) should be true after an unrelated tombstone", k)
		}
	}
	if h.Contains(3) {
		t.Fatal("contains(3) should be false after remove")
	}
}
