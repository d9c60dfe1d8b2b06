// Package lazylist implements LazyList: optimistic synchronization with
// validation. Traversal is unlocked; once the destination is found, pred
// and curr are locked and validated (neither marked, and pred still points
// at curr). Removal sets a logical-deletion mark before the physical
// unlink, so Contains can stay wait-free: it walks unlocked and reports
// curr.key == key && !curr.marked.
//
// next and marked are atomic even though every mutation happens under a
// lock, because Contains and the unlocked half of search read them without
// one; a plain field read racing a locked write is still a data race under
// the Go memory model even when the outcome is "safe" on common hardware.
package lazylist

import (
	"sync"
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

type node struct {
	key    ckv.Key
	val    ckv.Value
	next   atomic.Pointer[node]
	mu     sync.Mutex
	marked atomic.Bool
}

// LazyList is a sorted linked set with unlocked traversal and
// lock-then-validate mutation.
type LazyList struct {
	head *node
	tail *node
}

var _ ckv.Set = (*LazyList)(nil)

// New creates an empty LazyList.
func New() *LazyList {
	tail := &node{key: ckv.MaxKey}
	head := &node{key: ckv.MinKey}
	head.next.Store(tail)
	return &LazyList{head: head, tail: tail}
}

// search walks unlocked to the first node whose key >= key, returning the
// preceding node too.
func (l *LazyList) search(key ckv.Key) (pred, curr *node) {
	pred = l.head
	curr = pred.next.Load()
	for curr.key < key {
		pred = curr
		curr = curr.next.Load()
	}
	return pred, curr
}

func validate(pred, curr *node) bool {
	return !pred.marked.Load() && !curr.marked.Load() && pred.next.Load() == curr
}

// Insert adds (key, val) iff key is not already present.
func (l *LazyList) Insert(key ckv.Key, val ckv.Value) bool {
	for {
		pred, curr := l.search(key)
		pred.mu.Lock()
		curr.mu.Lock()

		if validate(pred, curr) {
			ok := curr.key != key
			if ok {
				n := &node{key: key, val: val}
				n.next.Store(curr)
				pred.next.Store(n)
			}
			curr.mu.Unlock()
			pred.mu.Unlock()
			return ok
		}
		curr.mu.Unlock()
		pred.mu.Unlock()
	}
}

// Remove deletes the entry with key if present.
func (l *LazyList) Remove(key ckv.Key) (ckv.Value, bool) {
	for {
		pred, curr := l.search(key)
		pred.mu.Lock()
		curr.mu.Lock()

		if validate(pred, curr) {
			if curr.key != key {
				curr.mu.Unlock()
				pred.mu.Unlock()
				return 0, false
			}
			curr.marked.Store(true)
			pred.next.Store(curr.next.Load())
			val := curr.val
			curr.mu.Unlock()
			pred.mu.Unlock()
			return val, true
		}
		curr.mu.Unlock()
		pred.mu.Unlock()
	}
}

// Contains is wait-free: it walks unlocked and reports whether the located
// node matches key and is not logically deleted.
func (l *LazyList) Contains(key ckv.Key) bool {
	curr := l.head
	for curr.key < key {
		curr = curr.next.Load()
	}
	return curr.key == key && !curr.marked.Load()
}
