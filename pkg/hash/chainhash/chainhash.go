// Package chainhash implements ChainHash: a single-mutex chained hash
// table. Every bucket is a sorted singly linked list (insertion dedups by
// key, deletion and lookup both scan to the first node whose key matches).
// Bucket index comes from xhash rather than key % table_size, and the
// whole table resizes in place — doubling the bucket array and re-chaining
// every node via a fresh hashCode — once the load factor (set size /
// table size) exceeds 4.
package chainhash

import (
	"sync"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv/xhash"
)

type node struct {
	key  ckv.Key
	val  ckv.Value
	next *node
}

const loadFactorThreshold = 4

// ChainHash is a resizable chained hash table guarded by one mutex.
type ChainHash struct {
	mu        sync.Mutex
	hasher    *xhash.Hasher
	buckets   []*node // buckets[i] is the head of a sorted chain, or nil
	tableSize int
	setSize   int
}

var _ ckv.Set = (*ChainHash)(nil)

// New creates a ChainHash with tableSize buckets.
func New(tableSize int) *ChainHash {
	if tableSize < 1 {
		tableSize = 1
	}
	return &ChainHash{
		hasher:    xhash.New(0x9747b28c),
		buckets:   make([]*node, tableSize),
		tableSize: tableSize,
	}
}

func (h *ChainHash) bucketFor(key ckv.Key, tableSize int) int {
	return int(h.hasher.Sum64(int64(key)) % uint64(tableSize))
}

// addNode splices n into the sorted chain rooted at buckets[i], returning
// false without modifying anything if key is already present.
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
func (h *ChainHash) Insert(key ckv.Key, val ckv.Value) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.bucketFor(key, h.tableSize)
	if !addNode(&h.buckets[i], &node{key: key, val: val}) {
		return false
	}
	h.setSize++
	if h.setSize/h.tableSize > loadFactorThreshold {
		h.resize()
	}
	return true
}

// Remove deletes the entry with key if present.
func (h *ChainHash) Remove(key ckv.Key) (ckv.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.bucketFor(key, h.tableSize)
	pred := &h.buckets[i]
	curr := *pred
	for curr != nil && curr.key < key {
		pred = &curr.next
		curr = curr.next
	}
	if curr == nil || curr.key != key {
		return 0, false
	}
	*pred = curr.next
	h.setSize--
	return curr.val, true
}

// Contains reports whether key is present.
func (h *ChainHash) Contains(key ckv.Key) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.bucketFor(key, h.tableSize)
	curr := h.buckets[i]
	for curr != nil && curr.key < key {
		curr = curr.next
	}
	return curr != nil && curr.key == key
}

// resize doubles the bucket array and re-chains every node under the new
// table size. Caller must hold h.mu.
func (h *ChainHash) resize() {
	newSize := h.tableSize * 2
	newBuckets := make([]*node, newSize)

	for _, head := range h.buckets {
		curr := head
		for curr != nil {
			next := curr.next
			i := h.bucketFor(curr.key, newSize)
			curr.next = nil
			addNode(&newBuckets[i], curr)
			curr = next
		}
	}

	h.buckets = newBuckets
	h.tableSize = newSize
}
