package cuckoohash

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

// TestSaturationTriggersResize is spec.md §8 scenario 3 ("Cuckoo table
// saturation"): insert enough keys into a small table that the
// displacement loop alone cannot settle every one without a resize, and
// confirm every key still ends up present.
func TestSaturationTriggersResize(t *testing.T) {
	h := New(4)
	const n = 64
	for k := 1; k <= n; k++ {
		if !h.Insert(ckv.Key(k), ckv.Value(k)) {
			t.Fatalf("insert(%d) should succeed", k)
		}
	}
	if h.tableSize <= 4 {
		t.Fatalf("tableSize = %d, want saturation to have forced a resize past 4", h.tableSize)
	}
	for k := 1; k <= n; k++ {
		if !h.Contains(ckv.Key(k)) {
			t.Fatalf("contains(%d) should be true after saturation resize", k)
		}
	}
}
