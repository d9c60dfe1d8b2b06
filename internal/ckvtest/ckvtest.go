// Package ckvtest holds the universal Set/Queue invariants (spec.md §8)
// every variant's own _test.go exercises, so each package's test file adds
// only what is specific to its own synchronization strategy instead of
// re-deriving "insert then contains then remove" fourteen times.
package ckvtest

import (
	"sync"
	"testing"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

// BasicSet checks single-threaded insert/contains/duplicate/remove/absent
// behavior against an empty s.
func BasicSet(t *testing.T, s ckv.Set) {
	t.Helper()

	if s.Contains(42) {
		t.Fatal("empty set should not contain 42")
	}
	if _, ok := s.Remove(42); ok {
		t.Fatal("remove from empty set should report false")
	}
	if !s.Insert(42, 420) {
		t.Fatal("insert of a new key should report true")
	}
	if !s.Contains(42) {
		t.Fatal("set should contain 42 after insert")
	}
	if s.Insert(42, 421) {
		t.Fatal("duplicate insert should report false")
	}
	if v, ok := s.Remove(42); !ok || v != 420 {
		t.Fatalf("remove(42) = (%v, %v), want (420, true)", v, ok)
	}
	if s.Contains(42) {
		t.Fatal("set should not contain 42 after remove")
	}
	if _, ok := s.Remove(42); ok {
		t.Fatal("second remove of the same key should report false")
	}
}

// RoundTrip inserts a range of keys, confirms each is present with the
// right value, removes every other key, then re-checks what remains —
// spec.md §8's "round-trip equals a sequential sorted map" property.
func RoundTrip(t *testing.T, s ckv.Set, base ckv.Key, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		k := base + ckv.Key(i)
		if !s.Insert(k, ckv.Value(k)) {
			t.Fatalf("insert(%d) should succeed", k)
		}
	}
	for i := 0; i < n; i++ {
		k := base + ckv.Key(i)
		if !s.Contains(k) {
			t.Fatalf("contains(%d) should be true after insert", k)
		}
	}
	for i := 0; i < n; i += 2 {
		k := base + ckv.Key(i)
		if v, ok := s.Remove(k); !ok || v != ckv.Value(k) {
			t.Fatalf("remove(%d) = (%v, %v), want (%d, true)", k, v, ok, k)
		}
	}
	for i := 0; i < n; i++ {
		k := base + ckv.Key(i)
		want := i%2 == 1
		if got := s.Contains(k); got != want {
			t.Fatalf("contains(%d) = %v, want %v", k, got, want)
		}
	}
}

// ConcurrentDisjointRange runs the harness protocol's core shape directly
// against a Set: threads goroutines each insert then remove their own
// disjoint key range [t*itemsPerThread+1, (t+1)*itemsPerThread], summing
// returned values, and the total must equal n(n+1)/2.
func ConcurrentDisjointRange(t *testing.T, s ckv.Set, threads, itemsPerThread int) {
	t.Helper()

	var wg sync.WaitGroup
	sums := make([]int64, threads)

	for g := 0; g < threads; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			base := int64(g) * int64(itemsPerThread)
			for i := 1; i <= itemsPerThread; i++ {
				k := ckv.Key(base + int64(i))
				if !s.Insert(k, ckv.Value(k)) {
					t.Errorf("thread %d: insert(%d) unexpectedly returned false", g, k)
				}
			}
			var sum int64
			for i := 1; i <= itemsPerThread; i++ {
				k := ckv.Key(base + int64(i))
				v, ok := s.Remove(k)
				if !ok {
					t.Errorf("thread %d: remove(%d) unexpectedly returned false", g, k)
					continue
				}
				sum += int64(v)
			}
			sums[g] = sum
		}(g)
	}
	wg.Wait()

	var checksum int64
	for _, sum := range sums {
		checksum += sum
	}
	n := int64(threads) * int64(itemsPerThread)
	want := n * (n + 1) / 2
	if checksum != want {
		t.Fatalf("checksum = %d, want %d", checksum, want)
	}
}

// BasicQueue checks single-threaded FIFO order and the empty-dequeue report.
func BasicQueue(t *testing.T, q ckv.Queue) {
	t.Helper()

	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue from empty queue should report false")
	}
	for i := ckv.Value(1); i <= 5; i++ {
		if !q.Enqueue(i) {
			t.Fatalf("enqueue(%d) should succeed", i)
		}
	}
	for i := ckv.Value(1); i <= 5; i++ {
		v, ok := q.Dequeue()
		if !ok || v != i {
			t.Fatalf("dequeue() = (%v, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue from drained queue should report false")
	}
}

// ConcurrentQueueChecksum has threads goroutines each enqueue their own
// disjoint value range, then drains the queue collectively and checks the
// sum of everything dequeued equals n(n+1)/2.
func ConcurrentQueueChecksum(t *testing.T, q ckv.Queue, threads, itemsPerThread int) {
	t.Helper()

	var wg sync.WaitGroup
	for g := 0; g < threads; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			base := int64(g) * int64(itemsPerThread)
			for i := 1; i <= itemsPerThread; i++ {
				if !q.Enqueue(ckv.Value(base + int64(i))) {
					t.Errorf("thread %d: enqueue unexpectedly returned false", g)
				}
			}
		}(g)
	}
	wg.Wait()

	total := threads * itemsPerThread
	remaining := total
	var mu sync.Mutex
	var checksum int64

	var wg2 sync.WaitGroup
	for g := 0; g < threads; g++ {
		wg2.Add(1)
		go func() {
			defer wg2.Done()
			var sum int64
			for {
				mu.Lock()
				if remaining <= 0 {
					mu.Unlock()
					break
				}
				remaining--
				mu.Unlock()

				v, ok := q.Dequeue()
				if !ok {
					t.Error("dequeue unexpectedly reported empty before drain target reached")
					continue
				}
				sum += int64(v)
			}
			mu.Lock()
			checksum += sum
			mu.Unlock()
		}()
	}
	wg2.Wait()

	n := int64(total)
	want := n * (n + 1) / 2
	if checksum != want {
		t.Fatalf("checksum = %d, want %d", checksum, want)
	}
}
