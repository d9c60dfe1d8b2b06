package lazylist

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

// TestConcurrentRemoveRace exercises spec.md §8 scenario 4: two goroutines
// racing to remove the same key — exactly one succeeds, the list does not
// contain the key afterward.
func TestConcurrentRemoveRace(t *testing.T) {
	l := New()
	l.Insert(5, 50)

	start := make(chan struct{})
	results := make(chan bool, 2)

	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, ok := l.Remove(5)
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
	if l.Contains(5) {
		t.Fatal("list should not contain 5 after the race")
	}
}
