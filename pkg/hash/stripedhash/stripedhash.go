// Package stripedhash implements StripedHash: a chained hash table with a
// fixed-size array of stripe locks, each covering bucket%lockSize. Insert
// and Remove read the current (bucket layout, table size) snapshot, hash
// the key, acquire the owning stripe, then re-check the snapshot is still
// current — a resize that raced in between invalidates the bucket index,
// and the operation retries against the fresh snapshot rather than mutate
// a bucket it no longer owns. Resize itself takes every stripe lock in
// index order before doubling the table, so it can never run concurrently
// with a mutation that has already committed to a bucket index.
package stripedhash

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

type snapshot struct {
	buckets   []*node
	tableSize int
}

const (
	loadFactorThreshold = 4
	maxRetries          = 3
)

// StripedHash is a chained hash table synchronized by a fixed pool of
// stripe locks rather than one global mutex.
type StripedHash struct {
	state    atomic.Pointer[snapshot]
	locks    []sync.Mutex
	lockSize int
	hasher   *xhash.Hasher
	setSize  atomic.Int64
}

var _ ckv.Set = (*StripedHash)(nil)

// New creates a StripedHash with tableSize buckets and tableSize stripe
// locks.
func New(tableSize int) *StripedHash {
	if tableSize < 1 {
		tableSize = 1
	}
	h := &StripedHash{
		locks:    make([]sync.Mutex, tableSize),
		lockSize: tableSize,
		hasher:   xhash.New(0xe6546b64),
	}
	h.state.Store(&snapshot{buckets: make([]*node, tableSize), tableSize: tableSize})
	return h
}

func (h *StripedHash) bucketFor(key ckv.Key, tableSize int) int {
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
func (h *StripedHash) Insert(key ckv.Key, val ckv.Value) bool {
	for attempt := 0; attempt < maxRetries; attempt++ {
		st := h.state.Load()
		bucket := h.bucketFor(key, st.tableSize)
		stripe := bucket % h.lockSize

		h.locks[stripe].Lock()
		cur := h.state.Load()
		if cur != st {
			h.locks[stripe].Unlock()
			continue
		}
		ok := addNode(&cur.buckets[bucket], &node{key: key, val: val})
		h.locks[stripe].Unlock()
		if !ok {
			return false
		}
		h.setSize.Add(1)
		if h.setSize.Load() > int64(cur.tableSize)*loadFactorThreshold {
			h.resize(cur)
		}
		return true
	}
	return false
}

// Remove deletes the entry with key if present.
func (h *StripedHash) Remove(key ckv.Key) (ckv.Value, bool) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		st := h.state.Load()
		bucket := h.bucketFor(key, st.tableSize)
		stripe := bucket % h.lockSize

		h.locks[stripe].Lock()
		cur := h.state.Load()
		if cur != st {
			h.locks[stripe].Unlock()
			continue
		}

		pred := &cur.buckets[bucket]
		curr := *pred
		for curr != nil && curr.key < key {
			pred = &curr.next
			curr = curr.next
		}
		if curr == nil || curr.key != key {
			h.locks[stripe].Unlock()
			return 0, false
		}
		*pred = curr.next
		h.locks[stripe].Unlock()
		h.setSize.Add(-1)
		return curr.val, true
	}
	return 0, false
}

// Contains reports whether key is present.
func (h *StripedHash) Contains(key ckv.Key) bool {
	for attempt := 0; attempt < maxRetries; attempt++ {
		st := h.state.Load()
		bucket := h.bucketFor(key, st.tableSize)
		stripe := bucket % h.lockSize

		h.locks[stripe].Lock()
		cur := h.state.Load()
		if cur != st {
			h.locks[stripe].Unlock()
			continue
		}
		curr := cur.buckets[bucket]
		for curr != nil && curr.key < key {
			curr = curr.next
		}
		found := curr != nil && curr.key == key
		h.locks[stripe].Unlock()
		return found
	}
	return false
}

// resize doubles the table, taking every stripe lock (in index order, to
// match the order any single mutation acquires them in) before rehashing.
// expected is the snapshot the caller observed triggering the resize; if
// another goroutine has already resized by the time all stripes are held,
// this is a no-op.
func (h *StripedHash) resize(expected *snapshot) {
	for i := range h.locks {
		h.locks[i].Lock()
	}
	defer func() {
		for i := range h.locks {
			h.locks[i].Unlock()
		}
	}()

	old := h.state.Load()
	if old != expected {
		return
	}

	newSize := old.tableSize * 2
	newBuckets := make([]*node, newSize)
	for _, head := range old.buckets {
		curr := head
		for curr != nil {
			next := curr.next
			idx := h.bucketFor(curr.key, newSize)
			curr.next = nil
			addNode(&newBuckets[idx], curr)
			curr = next
		}
	}

	h.state.Store(&snapshot{buckets: newBuckets, tableSize: newSize})
}
