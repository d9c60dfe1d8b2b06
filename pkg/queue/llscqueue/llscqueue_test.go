package llscqueue

import (
	"testing"

	"github.com/gaarutyunov/concurrent-collections/internal/ckvtest"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

func TestBasicFIFO(t *testing.T) {
	ckvtest.BasicQueue(t, New())
}

// TestConcurrentChecksum exercises the LL/SC double-buffer publish protocol
// under concurrent producers, then concurrent consumers: the checksum of
// everything dequeued must equal n(n+1)/2.
func TestConcurrentChecksum(t *testing.T) {
	ckvtest.ConcurrentQueueChecksum(t, New(), 10, 500)
}

// TestSequentialFIFOUnderRepeatedVersionFlips drives enough single-threaded
// enqueue/dequeue pairs to cycle the head/tail version counters many times
// over, checking the double-buffer never loses FIFO order once a slot has
// flipped current/non-current repeatedly.
func TestSequentialFIFOUnderRepeatedVersionFlips(t *testing.T) {
	q := New()
	for round := 0; round < 5000; round++ {
		if !q.Enqueue(ckv.Value(round)) {
			t.Fatalf("enqueue(%d) should succeed", round)
		}
		v, ok := q.Dequeue()
		if !ok || v != ckv.Value(round) {
			t.Fatalf("dequeue() = (%v, %v), want (%d, true)", v, ok, round)
		}
	}
}
