// Package msqueue implements MSQueue: Michael & Scott's lock-free FIFO
// queue ("Simple, Fast, and Practical Non-Blocking and Blocking Concurrent
// Queue Algorithms"). head and tail are each a (node pointer, count) pair
// CAS'd as one unit — the original packs both into a 16-byte word for a
// single cmpxchg16b; here the pair is an immutable *ref behind
// atomic.Pointer, the same rendering harrislist and the skiplists use for
// a tagged pointer. The count exists purely to dodge ABA: a dequeued and
// reused node's pointer value could otherwise be mistaken for the node
// that originally occupied a slot.
package msqueue

import (
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/internal/reclaim"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

type node struct {
	next atomic.Pointer[ref]
	val  ckv.Value
}

type ref struct {
	ptr   *node
	count uint64
}

func newRef(n *node, count uint64) *ref { return &ref{ptr: n, count: count} }

// MSQueue is an unbounded lock-free FIFO queue.
type MSQueue struct {
	head atomic.Pointer[ref]
	tail atomic.Pointer[ref]
	dom  *reclaim.Domain
}

var _ ckv.Queue = (*MSQueue)(nil)

// New creates an empty MSQueue with a single dummy node.
func New() *MSQueue {
	dummy := &node{}
	dummy.next.Store(newRef(nil, 0))
	q := &MSQueue{dom: reclaim.NewDomain()}
	q.head.Store(newRef(dummy, 0))
	q.tail.Store(newRef(dummy, 0))
	return q
}

// Enqueue adds val to the tail of the queue. Always succeeds.
func (q *MSQueue) Enqueue(val ckv.Value) bool {
	g := q.dom.Enter()
	defer g.Exit()

	newNode := &node{val: val}
	newNode.next.Store(newRef(nil, 0))
	var tail *ref

	for {
		tail = q.tail.Load()
		next := tail.ptr.next.Load()

		if tail != q.tail.Load() {
			continue
		}
		if next.ptr == nil {
			if tail.ptr.next.CompareAndSwap(next, newRef(newNode, next.count+1)) {
				break
			}
		} else {
			q.tail.CompareAndSwap(tail, newRef(next.ptr, tail.count+1))
		}
	}
	q.tail.CompareAndSwap(tail, newRef(newNode, tail.count+1))
	return true
}

// Dequeue removes and returns the value at the head of the queue.
func (q *MSQueue) Dequeue() (ckv.Value, bool) {
	g := q.dom.Enter()
	defer g.Exit()

	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.ptr.next.Load()

		if head != q.head.Load() {
			continue
		}
		if head.ptr == tail.ptr {
			if next.ptr == nil {
				return 0, false
			}
			q.tail.CompareAndSwap(tail, newRef(next.ptr, head.count+1))
			continue
		}

		val := next.ptr.val
		if q.head.CompareAndSwap(head, newRef(next.ptr, head.count+1)) {
			q.dom.Retire(head.ptr)
			return val, true
		}
	}
}
