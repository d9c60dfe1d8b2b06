// Package coarselist implements CoarseList: a sorted singly linked list
// guarded by a single container-wide mutex. Every operation traverses the
// list and performs its splice/unsplice under the same lock; the
// linearization point is the lock acquisition itself.
package coarselist

import (
	"sync"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

type node struct {
	key  ckv.Key
	val  ckv.Value
	next *node
}

// CoarseList is a sorted linked set of (key, value) pairs protected by a
// single mutex. It is deadlock-free (a single FIFO mutex) but serializes
// all traffic, the baseline every other list variant in this module is
// measured against.
type CoarseList struct {
	mu   sync.Mutex
	head *node
	tail *node
}

var _ ckv.Set = (*CoarseList)(nil)

// New creates an empty CoarseList bounded by the MinKey/MaxKey sentinels.
func New() *CoarseList {
	tail := &node{key: ckv.MaxKey}
	head := &node{key: ckv.MinKey, next: tail}
	return &CoarseList{head: head, tail: tail}
}

// find locates the predecessor/current pair bracketing key: pred.key < key <= curr.key.
func (l *CoarseList) find(key ckv.Key) (pred, curr *node) {
	pred = l.head
	curr = pred.next
	for curr.key < key {
		pred = curr
		curr = curr.next
	}
	return pred, curr
}

// Insert adds (key, val) iff key is not already present.
func (l *CoarseList) Insert(key ckv.Key, val ckv.Value) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	pred, curr := l.find(key)
	if curr.key == key {
		return false
	}
	n := &node{key: key, val: val, next: curr}
	pred.next = n
	return true
}

// Remove deletes the entry with key if present, returning its value.
func (l *CoarseList) Remove(key ckv.Key) (ckv.Value, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pred, curr := l.find(key)
	if curr.key != key {
		return 0, false
	}
	pred.next = curr.next
	return curr.val, true
}

// Contains reports whether key is present.
func (l *CoarseList) Contains(key ckv.Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, curr := l.find(key)
	return curr.key == key
}
