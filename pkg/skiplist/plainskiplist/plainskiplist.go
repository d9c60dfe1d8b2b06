// Package plainskiplist implements PlainSkiplist: a Bernoulli-level
// randomized skiplist guarded by a single container mutex. search locates
// preds[]/succs[] arrays — the predecessor and successor at each level of
// the first node with key >= k — and returns the highest level at which an
// exact match was found, or -1.
package plainskiplist

import (
	"sync"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv/internal/xrand"
)

type node struct {
	key      ckv.Key
	val      ckv.Value
	topLevel int
	next     []*node
}

// PlainSkiplist is a randomized skiplist with a single container-wide mutex.
type PlainSkiplist struct {
	mu       sync.Mutex
	maxLevel int
	head     *node
	tail     *node
	lg       *xrand.LevelGenerator
	preds    []*node // per-instance scratch; safe because mu serializes all access
	succs    []*node
}

var _ ckv.Set = (*PlainSkiplist)(nil)

// New creates an empty PlainSkiplist with maxLevel towers, bounded by
// [minKey, maxKey].
func New(maxLevel int, minKey, maxKey ckv.Key) *PlainSkiplist {
	if maxLevel < 1 {
		maxLevel = 1
	}
	tail := &node{key: maxKey, topLevel: maxLevel - 1, next: make([]*node, maxLevel)}
	head := &node{key: minKey, topLevel: maxLevel - 1, next: make([]*node, maxLevel)}
	for i := range head.next {
		head.next[i] = tail
	}
	return &PlainSkiplist{
		maxLevel: maxLevel,
		head:     head,
		tail:     tail,
		lg:       xrand.NewLevelGenerator(0xA5A5, maxLevel),
		preds:    make([]*node, maxLevel),
		succs:    make([]*node, maxLevel),
	}
}

// search fills sl.preds/sl.succs for every level and returns the highest
// level at which an exact match for key was found, or -1.
func (sl *PlainSkiplist) search(key ckv.Key) int {
	found := -1
	pred := sl.head
	for level := sl.maxLevel - 1; level >= 0; level-- {
		curr := pred.next[level]
		for curr.key < key {
			pred = curr
			curr = pred.next[level]
		}
		if found == -1 && curr.key == key {
			found = level
		}
		sl.preds[level] = pred
		sl.succs[level] = curr
	}
	return found
}

// Insert adds (key, val) iff key is not already present.
func (sl *PlainSkiplist) Insert(key ckv.Key, val ckv.Value) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.search(key) != -1 {
		return false
	}

	topLevel := sl.lg.Random()
	n := &node{key: key, val: val, topLevel: topLevel, next: make([]*node, topLevel+1)}
	for level := 0; level <= topLevel; level++ {
		n.next[level] = sl.succs[level]
		sl.preds[level].next[level] = n
	}
	return true
}

// Remove deletes the entry with key if present.
func (sl *PlainSkiplist) Remove(key ckv.Key) (ckv.Value, bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.search(key) == -1 {
		return 0, false
	}
	victim := sl.succs[0]
	for level := victim.topLevel; level >= 0; level-- {
		sl.preds[level].next[level] = victim.next[level]
	}
	return victim.val, true
}

// Contains reports whether key is present.
func (sl *PlainSkiplist) Contains(key ckv.Key) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	return sl.search(key) != -1
}
