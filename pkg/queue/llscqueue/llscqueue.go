// Package llscqueue implements LLSCQueue: Doherty, Herlihy, Luchangco &
// Moir's lock-free queue built from an emulated load-linked/store-
// conditional pair ("Bringing Practical Lock-Free Synchronization to
// 64-Bit Applications"). Each of head and tail is a double-buffered slot
// pair (ptr0, ptr1) plus a version counter: LL snapshots whichever slot
// the current version selects; SC publishes a new node into the *other*
// slot with a single CAS, guarded by the exact predecessor value recorded
// on the node at creation time, then flips the version so the slot it
// just wrote becomes current. That two-phase publish is the paper's
// actual contribution — distinct from msqueue's single tagged-pointer
// CAS — and is what this type preserves.
//
// The original also threads an ExitTag/transfersLeft reference count
// through every node so a thread can prove, before calling C's free(),
// that no other thread's in-flight LL still holds a pointer to it. That
// bookkeeping exists only to make manual deallocation safe; it has
// nothing to do with queue correctness, and a garbage-collected node
// needs none of it; it's dropped here.
package llscqueue

import (
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

type node struct {
	val  ckv.Value
	next atomic.Pointer[node]
	pred *node
}

type entryTag struct {
	ver uint64
}

// llscVar is one double-buffered, versioned LL/SC slot.
type llscVar struct {
	entry atomic.Pointer[entryTag]
	ptr0  atomic.Pointer[node]
	ptr1  atomic.Pointer[node]
}

func (v *llscVar) current(ver uint64) *node {
	if ver%2 == 0 {
		return v.ptr0.Load()
	}
	return v.ptr1.Load()
}

func (v *llscVar) nonCurrent(ver uint64) *atomic.Pointer[node] {
	if ver%2 == 0 {
		return &v.ptr1
	}
	return &v.ptr0
}

// ll (load-link) snapshots the slot's current version and node.
func (v *llscVar) ll() (ver uint64, n *node) {
	e := v.entry.Load()
	return e.ver, v.current(e.ver)
}

// sc (store-conditional) publishes nd into the non-current slot, guarded
// by the predecessor recorded on mynode (the node the LL observed), then
// advances the version so nd becomes current. Reports whether its own CAS
// into the non-current slot won; the version is advanced regardless, by
// whichever goroutine gets there first, exactly as in the original.
func (v *llscVar) sc(nd *node, myver uint64, mynode *node) bool {
	success := v.nonCurrent(myver).CompareAndSwap(mynode.pred, nd)

	for {
		e := v.entry.Load()
		if e.ver != myver {
			break
		}
		if v.entry.CompareAndSwap(e, &entryTag{ver: e.ver + 1}) {
			break
		}
	}
	return success
}

// LLSCQueue is an unbounded lock-free FIFO queue synchronized through a
// pair of emulated LL/SC variables instead of a single tagged pointer.
type LLSCQueue struct {
	head llscVar
	tail llscVar
}

var _ ckv.Queue = (*LLSCQueue)(nil)

// New creates an empty LLSCQueue.
func New() *LLSCQueue {
	q := &LLSCQueue{}

	p1 := &node{}
	p0 := &node{pred: p1}

	q.tail.entry.Store(&entryTag{ver: 0})
	q.tail.ptr0.Store(p0)
	q.tail.ptr1.Store(p1)

	q.head.entry.Store(&entryTag{ver: 0})
	q.head.ptr0.Store(p0)
	q.head.ptr1.Store(p1)

	return q
}

// Enqueue adds val to the tail of the queue. Always succeeds.
func (q *LLSCQueue) Enqueue(val ckv.Value) bool {
	nd := &node{val: val}

	for {
		myver, tail := q.tail.ll()
		nd.pred = tail

		if tail.next.CompareAndSwap(nil, nd) {
			q.tail.sc(nd, myver, tail)
			break
		}
		q.tail.sc(tail.next.Load(), myver, tail)
	}
	return true
}

// Dequeue removes and returns the value at the head of the queue.
func (q *LLSCQueue) Dequeue() (ckv.Value, bool) {
	for {
		myver, head := q.head.ll()
		next := head.next.Load()
		if next == nil {
			return 0, false
		}
		if q.head.sc(next, myver, head) {
			return next.val, true
		}
	}
}
