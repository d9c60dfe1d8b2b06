package stripedhash

import (
	"testing"

	"github.com/gaarutyunov/concurrent-collections/internal/ckvtest"
)

func TestBasic(t *testing.T) {
	ckvtest.BasicSet(t, New(16))
}

func TestRoundTrip(t *testing.T) {
	ckvtest.RoundTrip(t, New(16), 0, 500)
}

func TestConcurrentDisjointRange(t *testing.T) {
	ckvtest.ConcurrentDisjointRange(t, New(8), 16, 500)
}

// TestConcurrentResize exercises a resize racing with ongoing operations:
// many goroutines insert enough keys to blow well past the load factor
// threshold on a small initial table, then a checksum confirms nothing was
// lost across the resize.
func TestConcurrentResize(t *testing.T) {
	h := New(4)
	ckvtest.ConcurrentDisjointRange(t, h, 20, 200)
}
