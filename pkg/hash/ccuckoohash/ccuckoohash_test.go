package ccuckoohash

import (
	"testing"

	"github.com/gaarutyunov/concurrent-collections/internal/ckvtest"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

func newTestTable() *CCuckooHash {
	return New(8, 4, 2)
}

func TestBasic(t *testing.T) {
	ckvtest.BasicSet(t, newTestTable())
}

func TestRoundTrip(t *testing.T) {
	ckvtest.RoundTrip(t, newTestTable(), 0, 300)
}

func TestConcurrentDisjointRange(t *testing.T) {
	ckvtest.ConcurrentDisjointRange(t, newTestTable(), 16, 300)
}

// TestSaturationTriggersResize pushes enough sequential inserts into a
// small table that relocate must give up at least once and force a resize,
// then confirms nothing inserted was lost.
func TestSaturationTriggersResize(t *testing.T) {
	h := New(4, 4, 2)
	const n = 200
	for k := 1; k <= n; k++ {
		if !h.Insert(ckv.Key(k), ckv.Value(k)) {
			t.Fatalf("insert(%d) should succeed", k)
		}
	}
	for k := 1; k <= n; k++ {
		if !h.Contains(ckv.Key(k)) {
			t.Fatalf("contains(%d) should be true after saturation resize", k)
		}
	}
}
