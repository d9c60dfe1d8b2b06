package plainskiplist

import (
	"testing"

	"github.com/gaarutyunov/concurrent-collections/internal/ckvtest"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

func newTestSkiplist() *PlainSkiplist {
	return New(16, ckv.MinKey, ckv.MaxKey)
}

func TestBasic(t *testing.T) {
	ckvtest.BasicSet(t, newTestSkiplist())
}

func TestRoundTrip(t *testing.T) {
	ckvtest.RoundTrip(t, newTestSkiplist(), 0, 500)
}

func TestConcurrentDisjointRange(t *testing.T) {
	ckvtest.ConcurrentDisjointRange(t, newTestSkiplist(), 10, 500)
}
