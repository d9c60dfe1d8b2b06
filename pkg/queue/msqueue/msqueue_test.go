package msqueue

import (
	"testing"

	"github.com/gaarutyunov/concurrent-collections/internal/ckvtest"
)

func TestBasicFIFO(t *testing.T) {
	ckvtest.BasicQueue(t, New())
}

// TestConcurrentChecksum is spec.md §8's MSQueue FIFO scenario generalized
// to a checksum: many producers enqueue a disjoint value range, many
// consumers drain it collectively, and the sum of everything dequeued must
// equal n(n+1)/2 — nothing lost, nothing duplicated.
func TestConcurrentChecksum(t *testing.T) {
	ckvtest.ConcurrentQueueChecksum(t, New(), 10, 500)
}
