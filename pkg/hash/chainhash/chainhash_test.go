package chainhash

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

// TestResizeOnLoadFactor is spec.md §8 scenario 1: initial bucket count 4,
// insert keys 1..10, observe setSize == 10, remove them in order, observe
// every remove returns the matching value, final setSize == 0. Resize must
// have occurred once (trigger at size/buckets > 4).
func TestResizeOnLoadFactor(t *testing.T) {
	h := New(4)
	for k := 1; k <= 10; k++ {
		if !h.Insert(ckv.Key(k), ckv.Value(k)) {
			t.Fatalf("insert(%d) should succeed", k)
		}
	}
	if h.setSize != 10 {
		t.Fatalf("setSize = %d, want 10", h.setSize)
	}
	if h.tableSize <= 4 {
		t.Fatalf("tableSize = %d, want a resize to have grown past 4", h.tableSize)
	}
	for k := 1; k <= 10; k++ {
		v, ok := h.Remove(ckv.Key(k))
		if !ok || v != ckv.Value(k) {
			t.Fatalf("remove(%d) = (%v, %v), want (%d, true)", k, v, ok, k)
		}
	}
	if h.setSize != 0 {
		t.Fatalf("setSize = %d, want 0", h.setSize)
	}
}
