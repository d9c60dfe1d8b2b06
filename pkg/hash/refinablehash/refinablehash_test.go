package refinablehash

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

func TestConcurrentResize(t *testing.T) {
	h := New(4)
	ckvtest.ConcurrentDisjointRange(t, h, 20, 200)
}
