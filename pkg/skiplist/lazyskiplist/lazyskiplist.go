// Package lazyskiplist implements LazySkiplist (Herlihy, Lev, Luchangco,
// Shavit): a randomized skiplist with a per-node mutex, marked and
// fullyLinked flags. search is unlocked. Insert locks preds[0..topLevel]
// bottom-up, validates at each level (!pred.marked && !succ.marked &&
// pred.next[level] == succ), splices bottom-up, then publishes the node by
// setting fullyLinked last. Remove validates the victim is fully linked,
// unmarked and at its recorded topLevel, marks it, locks its predecessors
// with the same validation, and unlinks top-down. Contains walks unlocked
// and reports fullyLinked && !marked.
//
// Go's sync.Mutex isn't reentrant, and the same predecessor node can appear
// at several levels of preds[], so instead of a recursive lock primitive
// this locks only the distinct nodes among preds[0..topLevel] — the second
// alternative the design notes call out — tracking which ones it actually
// acquired so it unlocks exactly those.
package lazyskiplist

import (
	"sync"
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv/internal/xrand"
)

type node struct {
	key         ckv.Key
	val         ckv.Value
	topLevel    int
	next        []atomic.Pointer[node]
	mu          sync.Mutex
	marked      atomic.Bool
	fullyLinked atomic.Bool
}

// LazySkiplist is a randomized skiplist using optimistic, validated
// per-node locking instead of one container mutex.
type LazySkiplist struct {
	maxLevel int
	head     *node
	tail     *node
	lg       *xrand.LevelGenerator
	scratch  sync.Pool // *scratchBuf, sized maxLevel
}

type scratchBuf struct {
	preds, succs []*node
}

var _ ckv.Set = (*LazySkiplist)(nil)

// New creates an empty LazySkiplist with maxLevel towers, bounded by
// [minKey, maxKey].
func New(maxLevel int, minKey, maxKey ckv.Key) *LazySkiplist {
	if maxLevel < 1 {
		maxLevel = 1
	}
	tail := &node{key: maxKey, topLevel: maxLevel - 1, next: make([]atomic.Pointer[node], maxLevel)}
	head := &node{key: minKey, topLevel: maxLevel - 1, next: make([]atomic.Pointer[node], maxLevel)}
	for i := range head.next {
		head.next[i].Store(tail)
	}
	head.fullyLinked.Store(true)
	tail.fullyLinked.Store(true)

	sl := &LazySkiplist{
		maxLevel: maxLevel,
		head:     head,
		tail:     tail,
		lg:       xrand.NewLevelGenerator(0xC0FFEE, maxLevel),
	}
	sl.scratch.New = func() any {
		return &scratchBuf{preds: make([]*node, maxLevel), succs: make([]*node, maxLevel)}
	}
	return sl
}

// search fills buf.preds/buf.succs for every level and returns the highest
// level at which an exact match for key was found, or -1. Unlocked.
func (sl *LazySkiplist) search(key ckv.Key, buf *scratchBuf) int {
	found := -1
	pred := sl.head
	for level := sl.maxLevel - 1; level >= 0; level-- {
		curr := pred.next[level].Load()
		for curr.key < key {
			pred = curr
			curr = pred.next[level].Load()
		}
		if found == -1 && curr.key == key {
			found = level
		}
		buf.preds[level] = pred
		buf.succs[level] = curr
	}
	return found
}

// acquireUnique locks the distinct nodes among preds[0..topLevel] and
// returns them in lock-acquisition order (bottom level first, per the
// lock-ordering rule), so the caller can unlock exactly what it locked.
func acquireUnique(preds []*node, topLevel int) []*node {
	locked := make([]*node, 0, topLevel+1)
	for level := 0; level <= topLevel; level++ {
		n := preds[level]
		dup := false
		for _, l := range locked {
			if l == n {
				dup = true
				break
			}
		}
		if !dup {
			n.mu.Lock()
			locked = append(locked, n)
		}
	}
	return locked
}

func releaseAll(locked []*node) {
	for _, n := range locked {
		n.mu.Unlock()
	}
}

// Insert adds (key, val) iff key is not already present.
func (sl *LazySkiplist) Insert(key ckv.Key, val ckv.Value) bool {
	buf := sl.scratch.Get().(*scratchBuf)
	defer sl.scratch.Put(buf)

	topLevel := sl.lg.Random()

	for {
		lFound := sl.search(key, buf)
		if lFound != -1 {
			found := buf.succs[lFound]
			if !found.marked.Load() {
				for !found.fullyLinked.Load() {
					// Another insert is still publishing this node; wait it out.
				}
				return false
			}
			continue
		}

		locked := acquireUnique(buf.preds, topLevel)
		valid := true
		for level := 0; level <= topLevel && valid; level++ {
			pred, succ := buf.preds[level], buf.succs[level]
			valid = !pred.marked.Load() && !succ.marked.Load() && pred.next[level].Load() == succ
		}
		if !valid {
			releaseAll(locked)
			continue
		}

		n := &node{key: key, val: val, topLevel: topLevel, next: make([]atomic.Pointer[node], topLevel+1)}
		for level := 0; level <= topLevel; level++ {
			n.next[level].Store(buf.succs[level])
			buf.preds[level].next[level].Store(n)
		}
		n.fullyLinked.Store(true)
		releaseAll(locked)
		return true
	}
}

// Remove deletes the entry with key if present.
func (sl *LazySkiplist) Remove(key ckv.Key) (ckv.Value, bool) {
	buf := sl.scratch.Get().(*scratchBuf)
	defer sl.scratch.Put(buf)

	var victim *node
	isMarked := false
	topLevel := -1

	for {
		lFound := sl.search(key, buf)
		if lFound == -1 {
			return 0, false
		}
		if !isMarked {
			candidate := buf.succs[lFound]
			if !candidate.fullyLinked.Load() || candidate.topLevel != lFound || candidate.marked.Load() {
				return 0, false
			}
			victim = candidate
			topLevel = victim.topLevel

			victim.mu.Lock()
			if victim.marked.Load() {
				victim.mu.Unlock()
				return 0, false
			}
			victim.marked.Store(true)
			isMarked = true
		}

		locked := acquireUnique(buf.preds, topLevel)
		valid := true
		for level := 0; level <= topLevel && valid; level++ {
			valid = !buf.preds[level].marked.Load() && buf.preds[level].next[level].Load() == victim
		}
		if !valid {
			releaseAll(locked)
			continue
		}

		for level := topLevel; level >= 0; level-- {
			buf.preds[level].next[level].Store(victim.next[level].Load())
		}
		victim.mu.Unlock()
		releaseAll(locked)
		return victim.val, true
	}
}

// Contains walks unlocked and reports whether the located node is fully
// linked and not marked.
func (sl *LazySkiplist) Contains(key ckv.Key) bool {
	buf := sl.scratch.Get().(*scratchBuf)
	defer sl.scratch.Put(buf)

	lFound := sl.search(key, buf)
	if lFound == -1 {
		return false
	}
	found := buf.succs[lFound]
	return found.fullyLinked.Load() && !found.marked.Load()
}
