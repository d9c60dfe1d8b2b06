// Package harrislist implements HarrisList: Timothy L. Harris's lock-free
// sorted linked list ("A Pragmatic Implementation of Non-Blocking
// Linked-Lists"). Every next pointer carries a mark meaning "this node is
// logically deleted". search returns (pred, curr) with pred.key < key <=
// curr.key and physically unlinks any marked nodes it walks past with a
// single CAS on pred.next. Remove is two CASes: mark curr's own next
// pointer, then swing pred.next past curr. A traverser that loses the
// second CAS just retries search; either it or the original remover
// eventually finishes the physical unlink.
//
// The mark bit is carried by CAS'ing an immutable *ref (next node pointer
// plus a marked bool) behind atomic.Pointer, rather than stealing the low
// bit of a raw pointer as the C original and Harris's paper do — the
// Go-idiomatic rendering of "single atomic update of (pointer, flags)"
// called out in the design notes, and the same shape the teacher's
// Node.next []*atomic.Pointer[Node] plus a companion flag already uses, one
// step tighter: here pointer and mark update atomically together instead
// of via a second, separately-racing atomic.Bool. Every CAS below compares
// against the exact *ref instance last loaded, never a freshly-built one —
// atomic.Pointer.CompareAndSwap matches by pointer identity, not by field
// equality.
package harrislist

import (
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/internal/reclaim"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

type ref struct {
	next   *node
	marked bool
}

type node struct {
	key  ckv.Key
	val  ckv.Value
	next atomic.Pointer[ref]
}

func newRef(n *node, marked bool) *ref { return &ref{next: n, marked: marked} }

// HarrisList is a lock-free sorted linked set.
type HarrisList struct {
	head *node
	tail *node
	dom  *reclaim.Domain
}

var _ ckv.Set = (*HarrisList)(nil)

// New creates an empty HarrisList.
func New() *HarrisList {
	tail := &node{key: ckv.MaxKey}
	head := &node{key: ckv.MinKey}
	head.next.Store(newRef(tail, false))
	return &HarrisList{head: head, tail: tail, dom: reclaim.NewDomain()}
}

// search returns pred, the exact *ref last observed at pred.next, and curr,
// with pred.key < key <= curr.key, physically unlinking any marked nodes
// encountered along the way.
func (l *HarrisList) search(key ckv.Key) (pred *node, predRef *ref, curr *node) {
retry:
	pred = l.head
	predRef = pred.next.Load()
	curr = predRef.next

	for curr != l.tail {
		currRef := curr.next.Load()
		if currRef.marked {
			spliced := newRef(currRef.next, false)
			if !pred.next.CompareAndSwap(predRef, spliced) {
				goto retry
			}
			l.dom.Retire(curr)
			predRef = spliced
			curr = currRef.next
			continue
		}
		if curr.key >= key {
			break
		}
		pred = curr
		predRef = currRef
		curr = currRef.next
	}
	return pred, predRef, curr
}

// Insert adds (key, val) iff key is not already present.
func (l *HarrisList) Insert(key ckv.Key, val ckv.Value) bool {
	g := l.dom.Enter()
	defer g.Exit()

	n := &node{key: key, val: val}
	for {
		pred, predRef, curr := l.search(key)
		if curr.key == key {
			return false
		}
		n.next.Store(newRef(curr, false))
		if pred.next.CompareAndSwap(predRef, newRef(n, false)) {
			return true
		}
	}
}

// Remove deletes the entry with key if present.
func (l *HarrisList) Remove(key ckv.Key) (ckv.Value, bool) {
	g := l.dom.Enter()
	defer g.Exit()

	for {
		pred, predRef, curr := l.search(key)
		if curr.key != key {
			return 0, false
		}

		currRef := curr.next.Load()
		if currRef.marked {
			continue
		}
		if !curr.next.CompareAndSwap(currRef, newRef(currRef.next, true)) {
			continue
		}

		val := curr.val
		if pred.next.CompareAndSwap(predRef, newRef(currRef.next, false)) {
			l.dom.Retire(curr)
		} else {
			// Lost the race to physically unlink; the next search (by us
			// or any other thread) will finish the job.
			l.search(key)
		}
		return val, true
	}
}

// Contains reports whether key is present and not logically deleted. It
// walks the physical list (ignoring marks, which still preserves
// sortedness) rather than calling search, so a lookup never performs a
// helping CAS of its own.
func (l *HarrisList) Contains(key ckv.Key) bool {
	g := l.dom.Enter()
	defer g.Exit()

	curr := l.head
	r := curr.next.Load()
	for r.next != l.tail && r.next.key < key {
		curr = r.next
		r = curr.next.Load()
	}
	candidate := r.next
	if candidate == l.tail {
		return false
	}
	return candidate.key == key && !candidate.next.Load().marked
}
