// Package lockfreeskiplist implements LockFreeSkiplist (Herlihy & Shavit):
// a randomized skiplist where every level's successor pointer carries a
// mark bit, the same (pointer, marked) CAS word used by harrislist, one
// atomic.Pointer[ref] per level instead of one per node. Insert links a new
// node bottom-up: the level-0 CAS is the linearization point, then upper
// levels are spliced in one at a time, re-running find to refresh
// preds/succs whenever a predecessor has moved. Remove marks a victim's
// levels top-down, with the level-0 mark as the linearization point, then
// calls find once more to physically unlink it — any concurrent find
// passing through helps finish that unlink regardless of who marked it.
package lockfreeskiplist

import (
	"sync"
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv/internal/xrand"
)

type ref struct {
	next   *node
	marked bool
}

func newRef(n *node, marked bool) *ref { return &ref{next: n, marked: marked} }

type node struct {
	key      ckv.Key
	val      ckv.Value
	topLevel int
	next     []atomic.Pointer[ref]
}

// LockFreeSkiplist is a randomized skiplist with a mark bit on every
// level's successor pointer and no blocking in any operation.
type LockFreeSkiplist struct {
	maxLevel int
	head     *node
	tail     *node
	lg       *xrand.LevelGenerator
	scratch  sync.Pool // *scratchBuf, sized maxLevel
}

type scratchBuf struct {
	preds, succs []*node
}

var _ ckv.Set = (*LockFreeSkiplist)(nil)

// New creates an empty LockFreeSkiplist with maxLevel towers, bounded by
// [minKey, maxKey].
func New(maxLevel int, minKey, maxKey ckv.Key) *LockFreeSkiplist {
	if maxLevel < 1 {
		maxLevel = 1
	}
	tail := &node{key: maxKey, topLevel: maxLevel - 1, next: make([]atomic.Pointer[ref], maxLevel)}
	head := &node{key: minKey, topLevel: maxLevel - 1, next: make([]atomic.Pointer[ref], maxLevel)}
	for i := range head.next {
		head.next[i].Store(newRef(tail, false))
	}
	for i := range tail.next {
		tail.next[i].Store(newRef(nil, false))
	}

	sl := &LockFreeSkiplist{
		maxLevel: maxLevel,
		head:     head,
		tail:     tail,
		lg:       xrand.NewLevelGenerator(0xBADA55, maxLevel),
	}
	sl.scratch.New = func() any {
		return &scratchBuf{preds: make([]*node, maxLevel), succs: make([]*node, maxLevel)}
	}
	return sl
}

// find fills buf.preds/buf.succs for every level, physically unlinking any
// marked node it passes through with a single CAS on the predecessor's
// level-l pointer, and reports whether key was found at level 0.
func (sl *LockFreeSkiplist) find(key ckv.Key, buf *scratchBuf) bool {
retry:
	pred := sl.head
	for level := sl.maxLevel - 1; level >= 0; level-- {
		currRef := pred.next[level].Load()
		curr := currRef.next
		for {
			succRef := curr.next[level].Load()
			for succRef.marked {
				spliced := newRef(succRef.next, false)
				if !pred.next[level].CompareAndSwap(currRef, spliced) {
					goto retry
				}
				currRef = spliced
				curr = currRef.next
				succRef = curr.next[level].Load()
			}
			if curr.key < key {
				pred = curr
				currRef = succRef
				curr = currRef.next
			} else {
				break
			}
		}
		buf.preds[level] = pred
		buf.succs[level] = curr
	}
	return buf.succs[0].key == key
}

// Insert adds (key, val) iff key is not already present.
func (sl *LockFreeSkiplist) Insert(key ckv.Key, val ckv.Value) bool {
	buf := sl.scratch.Get().(*scratchBuf)
	defer sl.scratch.Put(buf)

	topLevel := sl.lg.Random()

	for {
		if sl.find(key, buf) {
			return false
		}

		n := &node{key: key, val: val, topLevel: topLevel, next: make([]atomic.Pointer[ref], topLevel+1)}
		for level := 0; level <= topLevel; level++ {
			n.next[level].Store(newRef(buf.succs[level], false))
		}

		pred, succ := buf.preds[0], buf.succs[0]
		predRef := pred.next[0].Load()
		if predRef.next != succ || predRef.marked {
			continue
		}
		if !pred.next[0].CompareAndSwap(predRef, newRef(n, false)) {
			continue
		}

		for level := 1; level <= topLevel; level++ {
			for {
				pred, succ = buf.preds[level], buf.succs[level]
				predRef = pred.next[level].Load()
				if predRef.next != succ || predRef.marked {
					sl.find(key, buf)
					continue
				}
				if pred.next[level].CompareAndSwap(predRef, newRef(n, false)) {
					break
				}
			}
		}
		return true
	}
}

// Remove deletes the entry with key if present.
func (sl *LockFreeSkiplist) Remove(key ckv.Key) (ckv.Value, bool) {
	buf := sl.scratch.Get().(*scratchBuf)
	defer sl.scratch.Put(buf)

	if !sl.find(key, buf) {
		return 0, false
	}
	victim := buf.succs[0]

	for level := victim.topLevel; level >= 1; level-- {
		for {
			r := victim.next[level].Load()
			if r.marked {
				break
			}
			if victim.next[level].CompareAndSwap(r, newRef(r.next, true)) {
				break
			}
		}
	}

	for {
		r := victim.next[0].Load()
		if r.marked {
			return 0, false
		}
		if victim.next[0].CompareAndSwap(r, newRef(r.next, true)) {
			sl.find(key, buf)
			return victim.val, true
		}
	}
}

// Contains reports whether key is present. It traverses without ever
// performing a CAS of its own, skipping past marked nodes rather than
// unlinking them, so a lookup never does helping work.
func (sl *LockFreeSkiplist) Contains(key ckv.Key) bool {
	pred := sl.head
	var curr *node
	for level := sl.maxLevel - 1; level >= 0; level-- {
		curr = pred.next[level].Load().next
		for {
			succRef := curr.next[level].Load()
			for succRef.marked {
				curr = succRef.next
				succRef = curr.next[level].Load()
			}
			if curr.key < key {
				pred = curr
				curr = succRef.next
			} else {
				break
			}
		}
	}
	return curr.key == key
}
