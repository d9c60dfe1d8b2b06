// Package refinablehash implements RefinableHash: a chained hash table
// with one lock per bucket, where the lock array grows along with the
// bucket array instead of staying a fixed stripe count (contrast
// stripedhash). Insert and Remove snapshot the current (buckets, size)
// pair, hash the key, lock the owning bucket, then re-check the snapshot
// is still current before mutating — the same optimistic-then-verify
// shape as stripedhash, just with per-bucket rather than per-stripe
// granularity. Resize locks every bucket of the old table, reuses those
// same bucket-and-lock pairs for the low half of the doubled table, and
// allocates fresh ones for the high half.
package refinablehash

import (
	"sync"
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv/xhash"
)

type node struct {
	key  ckv.Key
	val  ckv.Value
	next *node
}

type bucket struct {
	mu   sync.Mutex
	head *node
}

type snapshot struct {
	buckets   []*bucket
	tableSize int
}

const (
	loadFactorThreshold = 4
	maxRetries          = 3
)

// RefinableHash is a chained hash table with a per-bucket lock array that
// grows with the table.
type RefinableHash struct {
	state   atomic.Pointer[snapshot]
	hasher  *xhash.Hasher
	setSize atomic.Int64
}

var _ ckv.Set = (*RefinableHash)(nil)

// New creates a RefinableHash with tableSize buckets.
func New(tableSize int) *RefinableHash {
	if tableSize < 1 {
		tableSize = 1
	}
	buckets := make([]*bucket, tableSize)
	for i := range buckets {
		buckets[i] = &bucket{}
	}
	h := &RefinableHash{hasher: xhash.New(0x85ebca6b)}
	h.state.Store(&snapshot{buckets: buckets, tableSize: tableSize})
	return h
}

func (h *RefinableHash) bucketFor(key ckv.Key, tableSize int) int {
	return int(h.hasher.Sum64(int64(key)) % uint64(tableSize))
}

func addNode(head **node, n *node) bool {
	pred := head
	curr := *pred
	for curr != nil && curr.key < n.key {
		pred = &curr.next
		curr = curr.next
	}
	if curr != nil && curr.key == n.key {
		return false
	}
	n.next = curr
	*pred = n
	return true
}

// Insert adds (key, val) iff key is not already present.
func (h *RefinableHash) Insert(key ckv.Key, val ckv.Value) bool {
	for attempt := 0; attempt < maxRetries; attempt++ {
		st := h.state.Load()
		b := st.buckets[h.bucketFor(key, st.tableSize)]

		b.mu.Lock()
		if h.state.Load() != st {
			b.mu.Unlock()
			continue
		}
		ok := addNode(&b.head, &node{key: key, val: val})
		b.mu.Unlock()
		if !ok {
			return false
		}
		h.setSize.Add(1)
		if h.setSize.Load() > int64(st.tableSize)*loadFactorThreshold {
			h.resize(st)
		}
		return true
	}
	return false
}

// Remove deletes the entry with key if present.
func (h *RefinableHash) Remove(key ckv.Key) (ckv.Value, bool) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		st := h.state.Load()
		b := st.buckets[h.bucketFor(key, st.tableSize)]

		b.mu.Lock()
		if h.state.Load() != st {
			b.mu.Unlock()
			continue
		}
		pred := &b.head
		curr := *pred
		for curr != nil && curr.key < key {
			pred = &curr.next
			curr = curr.next
		}
		if curr == nil || curr.key != key {
			b.mu.Unlock()
			return 0, false
		}
		*pred = curr.next
		b.mu.Unlock()
		h.setSize.Add(-1)
		return curr.val, true
	}
	return 0, false
}

// Contains reports whether key is present.
func (h *RefinableHash) Contains(key ckv.Key) bool {
	for attempt := 0; attempt < maxRetries; attempt++ {
		st := h.state.Load()
		b := st.buckets[h.bucketFor(key, st.tableSize)]

		b.mu.Lock()
		if h.state.Load() != st {
			b.mu.Unlock()
			continue
		}
		curr := b.head
		for curr != nil && curr.key < key {
			curr = curr.next
		}
		found := curr != nil && curr.key == key
		b.mu.Unlock()
		return found
	}
	return false
}

// resize doubles the table. It locks every bucket of expected, reuses
// those bucket-and-lock pairs for the doubled table's low half, allocates
// fresh ones for the high half, and rehashes every node into the result.
// A no-op if another goroutine has already resized past expected.
func (h *RefinableHash) resize(expected *snapshot) {
	for _, b := range expected.buckets {
		b.mu.Lock()
	}
	defer func() {
		for _, b := range expected.buckets {
			b.mu.Unlock()
		}
	}()

	if h.state.Load() != expected {
		return
	}

	newSize := expected.tableSize * 2
	newBuckets := make([]*bucket, newSize)
	copy(newBuckets, expected.buckets)
	for i := expected.tableSize; i < newSize; i++ {
		newBuckets[i] = &bucket{}
	}

	var all []*node
	for _, b := range expected.buckets {
		curr := b.head
		b.head = nil
		for curr != nil {
			next := curr.next
			curr.next = nil
			all = append(all, curr)
			curr = next
		}
	}
	for _, n := range all {
		idx := h.bucketFor(n.key, newSize)
		addNode(&newBuckets[idx].head, n)
	}

	h.state.Store(&snapshot{buckets: newBuckets, tableSize: newSize})
}
