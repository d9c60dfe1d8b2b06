package coarselist

import (
	"testing"

	"github.com/gaarutyunov/concurrent-collections/internal/ckvtest"
)

func TestBasic(t *testing.T) {
	ckvtest.BasicSet(t, New())
}

func TestRoundTrip(t *testing.T) {
	ckvtest.RoundTrip(t, New(), 0, 200)
}

func TestConcurrentDisjointRange(t *testing.T) {
	ckvtest.ConcurrentDisjointRange(t, New(), 10, 200)
}
