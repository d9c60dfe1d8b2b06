package lazyskiplist

import (
	"testing"

	"github.com/gaarutyunov/concurrent-collections/internal/ckvtest"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

func newTestSkiplist() *LazySkiplist {
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

// TestConcurrentRemoveRace exercises spec.md §8 scenario 4 against the
// lazy skiplist's fullyLinked/marked protocol.
func TestConcurrentRemoveRace(t *testing.T) {
	sl := newTestSkiplist()
	sl.Insert(5, 50)

	start := make(chan struct{})
	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, ok := sl.Remove(5)
			results <- ok
		}()
	}
	close(start)

	successes := 0
	for i := 0; i < 2; i++ {
		if <-results {
			successes++
		}
	}
	if successes != 1 {
		t.Fatalf("exactly one remove(5) should succeed, got %d", successes)
	}
	if sl.Contains(5) {
		t.Fatal("skiplist should not contain 5 after the race")
	}
}
