// Package finelist implements FineList: hand-over-hand fine-grained
// locking. A traversal always holds the locks on two adjacent nodes
// (pred, curr); to advance, it locks the new curr before releasing the old
// pred. Removal unlinks curr while holding the locks on both pred and curr
// and releases curr's lock only after the unlink, which is what keeps a
// concurrent traverser from ever entering a removed node — it always holds
// a lock on the predecessor at the moment it observes curr.
package finelist

import (
	"sync"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

type node struct {
	key  ckv.Key
	val  ckv.Value
	next *node
	mu   sync.Mutex
}

func (n *node) lock()   { n.mu.Lock() }
func (n *node) unlock() { n.mu.Unlock() }

// FineList is a sorted linked set using per-node locks instead of one
// container-wide mutex, trading coarse serialization for lock traffic
// proportional to list length per operation.
type FineList struct {
	head *node
	tail *node
}

var _ ckv.Set = (*FineList)(nil)

// New creates an empty FineList.
func New() *FineList {
	tail := &node{key: ckv.MaxKey}
	head := &node{key: ckv.MinKey, next: tail}
	return &FineList{head: head, tail: tail}
}

// find returns (pred, curr) with pred.key < key <= curr.key, both locked.
// The caller must unlock both when done.
func (l *FineList) find(key ckv.Key) (pred, curr *node) {
	pred = l.head
	pred.lock()
	curr = pred.next
	curr.lock()

	for curr.key < key {
		pred.unlock()
		pred = curr
		curr = curr.next
		curr.lock()
	}
	return pred, curr
}

// Insert adds (key, val) iff key is not already present.
func (l *FineList) Insert(key ckv.Key, val ckv.Value) bool {
	pred, curr := l.find(key)
	defer pred.unlock()
	defer curr.unlock()

	if curr.key == key {
		return false
	}
	n := &node{key: key, val: val, next: curr}
	pred.next = n
	return true
}

// Remove deletes the entry with key if present.
func (l *FineList) Remove(key ckv.Key) (ckv.Value, bool) {
	pred, curr := l.find(key)
	defer pred.unlock()

	if curr.key != key {
		curr.unlock()
		return 0, false
	}
	val := curr.val
	pred.next = curr.next
	curr.unlock()
	return val, true
}

// Contains reports whether key is present.
func (l *FineList) Contains(key ckv.Key) bool {
	pred, curr := l.find(key)
	defer pred.unlock()
	defer curr.unlock()

	return curr.key == key
}
