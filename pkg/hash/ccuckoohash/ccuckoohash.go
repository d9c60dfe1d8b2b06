// Package ccuckoohash implements ConcurrentCuckooHash: a concurrent
// cuckoo hash table (Herlihy, Shavit & Tzafrir's design) where every
// bucket is itself a short chain instead of a single slot, tolerating
// transient over-occupancy. Insert and Remove acquire only the two
// striped locks covering a key's two candidate buckets (lowest index
// first, to fix a global lock order); resize is the one operation that
// takes every stripe of both tables before touching anything. Insert
// places a new entry directly if either candidate bucket is under
// threshold; past threshold but under probe_size it still inserts, then
// calls relocate to walk a chain of displacements (bounded by an 8-round
// limit) trying to push some bucket back under threshold; if relocate
// gives up, or a candidate bucket is already at probe_size, the whole
// table resizes.
package ccuckoohash

import (
	"sync"
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv/xhash"
)

type entry struct {
	key  ckv.Key
	val  ckv.Value
	next *entry
}

// bucketList is a short unsorted chain, matching the original's
// probe-tolerant bucket representation rather than chainhash's sorted
// chain.
type bucketList struct {
	head *entry
	size int
}

func (l *bucketList) search(key ckv.Key) bool {
	for n := l.head; n != nil; n = n.next {
		if n.key == key {
			return true
		}
	}
	return false
}

func (l *bucketList) addAtTail(n *entry) {
	n.next = nil
	if l.head == nil {
		l.head = n
	} else {
		curr := l.head
		for curr.next != nil {
			curr = curr.next
		}
		curr.next = n
	}
	l.size++
}

func (l *bucketList) headEntry() *entry { return l.head }

func (l *bucketList) remove(key ckv.Key) *entry {
	var pred *entry
	curr := l.head
	for curr != nil && curr.key != key {
		pred = curr
		curr = curr.next
	}
	if curr == nil {
		return nil
	}
	if pred == nil {
		l.head = curr.next
	} else {
		pred.next = curr.next
	}
	curr.next = nil
	l.size--
	return curr
}

type tables struct {
	buckets   [2][]*bucketList
	tableSize int
}

// CCuckooHash is a concurrent cuckoo hash table with chained,
// probe-tolerant buckets and a fixed-size pair of stripe-lock arrays.
type CCuckooHash struct {
	pair      *xhash.Pair
	mtx       [2][]sync.Mutex
	mtxSize   int
	probeSize int
	threshold int

	mu  sync.RWMutex // guards t itself during resize's swap
	t   *tables
	set atomic.Int64
}

var _ ckv.Set = (*CCuckooHash)(nil)

// New creates a CCuckooHash with tableSize buckets per table. probeSize is
// the occupancy at which Insert and relocate stop adding to a bucket (resize
// may still overfill a bucket when both of an entry's candidate buckets are
// full); threshold is the occupancy below which Insert and relocate prefer
// to place an entry without displacing anything.
func New(tableSize, probeSize, threshold int) *CCuckooHash {
	if tableSize < 1 {
		tableSize = 1
	}
	h := &CCuckooHash{
		pair:      xhash.NewPair(),
		mtx:       [2][]sync.Mutex{make([]sync.Mutex, tableSize), make([]sync.Mutex, tableSize)},
		mtxSize:   tableSize,
		probeSize: probeSize,
		threshold: threshold,
	}
	h.t = newTables(tableSize)
	return h
}

func newTables(tableSize int) *tables {
	t := &tables{tableSize: tableSize}
	t.buckets[0] = make([]*bucketList, tableSize)
	t.buckets[1] = make([]*bucketList, tableSize)
	for i := 0; i < tableSize; i++ {
		t.buckets[0][i] = &bucketList{}
		t.buckets[1][i] = &bucketList{}
	}
	return t
}

func (h *CCuckooHash) hash0(key ckv.Key, mod int) int {
	return int(h.pair.H0(int64(key)) % uint64(mod))
}

func (h *CCuckooHash) hash1(key ckv.Key, mod int) int {
	return int(h.pair.H1(int64(key)) % uint64(mod))
}

// acquire locks the two stripes covering key, lowest index first.
func (h *CCuckooHash) acquire(key ckv.Key) {
	i := h.hash0(key, h.mtxSize)
	j := h.hash1(key, h.mtxSize)
	if i <= j {
		h.mtx[0][i].Lock()
		h.mtx[1][j].Lock()
	} else {
		h.mtx[1][j].Lock()
		h.mtx[0][i].Lock()
	}
}

func (h *CCuckooHash) release(key ckv.Key) {
	i := h.hash0(key, h.mtxSize)
	j := h.hash1(key, h.mtxSize)
	h.mtx[0][i].Unlock()
	h.mtx[1][j].Unlock()
}

// allLock takes every stripe of both tables, in index order, for resize.
func (h *CCuckooHash) allLock() {
	for i := 0; i < h.mtxSize; i++ {
		h.mtx[0][i].Lock()
		h.mtx[1][i].Lock()
	}
}

func (h *CCuckooHash) allUnlock() {
	for i := 0; i < h.mtxSize; i++ {
		h.mtx[1][i].Unlock()
		h.mtx[0][i].Unlock()
	}
}

func (h *CCuckooHash) snapshot() *tables {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.t
}

func (h *CCuckooHash) containsLocked(t *tables, key ckv.Key) bool {
	i := h.hash0(key, t.tableSize)
	if t.buckets[0][i].search(key) {
		return true
	}
	j := h.hash1(key, t.tableSize)
	return t.buckets[1][j].search(key)
}

// Insert adds (key, val) iff key is not already present.
func (h *CCuckooHash) Insert(key ckv.Key, val ckv.Value) bool {
	for {
		h.acquire(key)
		t := h.snapshot()

		if h.containsLocked(t, key) {
			h.release(key)
			return false
		}

		i0 := h.hash0(key, t.tableSize)
		i1 := h.hash1(key, t.tableSize)
		set0 := t.buckets[0][i0]
		set1 := t.buckets[1][i1]

		n := &entry{key: key, val: val}

		switch {
		case set0.size < h.threshold:
			set0.addAtTail(n)
			h.set.Add(1)
			h.release(key)
			return true
		case set1.size < h.threshold:
			set1.addAtTail(n)
			h.set.Add(1)
			h.release(key)
			return true
		case set0.size < h.probeSize:
			set0.addAtTail(n)
			h.set.Add(1)
			h.release(key)
			h.relocateOrResize(0, i0)
			return true
		case set1.size < h.probeSize:
			set1.addAtTail(n)
			h.set.Add(1)
			h.release(key)
			h.relocateOrResize(1, i1)
			return true
		default:
			h.release(key)
			h.resize(t)
			continue
		}
	}
}

func (h *CCuckooHash) relocateOrResize(table, bucket int) {
	if !h.relocate(table, bucket) {
		h.resize(h.snapshot())
	}
}

// relocate walks a bounded chain of displacements trying to push some
// bucket's occupancy back under threshold, starting from (table, bucket).
func (h *CCuckooHash) relocate(table, bucket int) bool {
	const limit = 8
	i, hi := table, bucket

	for round := 0; round < limit; round++ {
		t := h.snapshot()
		iSet := t.buckets[i][hi]

		y := iSet.headEntry()
		if y == nil {
			return true
		}
		lockKey := y.key

		j := 1 - i
		var hj int
		if i == 0 {
			hj = h.hash1(lockKey, t.tableSize)
		} else {
			hj = h.hash0(lockKey, t.tableSize)
		}

		h.acquire(lockKey)
		if cur := h.snapshot(); cur != t {
			// a resize swapped h.t while we were computing lockKey/hj; t's
			// buckets may already be unlinked and re-threaded into cur, so
			// iSet/jSet are no longer safe to mutate. Bail and let the
			// caller fall back to resize, which will no-op against the
			// now-stale snapshot and leave the fresh table as-is.
			h.release(lockKey)
			return false
		}
		jSet := t.buckets[j][hj]

		moved := iSet.remove(lockKey)
		if moved == nil {
			h.release(lockKey)
			if iSet.size >= h.threshold {
				continue
			}
			return true
		}

		switch {
		case jSet.size < h.threshold:
			jSet.addAtTail(moved)
			h.release(lockKey)
			return true
		case jSet.size < h.probeSize:
			jSet.addAtTail(moved)
			i, hi = j, hj
			h.release(lockKey)
		default:
			iSet.addAtTail(moved)
			h.release(lockKey)
			return false
		}
	}
	return false
}

// Remove deletes the entry with key if present.
func (h *CCuckooHash) Remove(key ckv.Key) (ckv.Value, bool) {
	h.acquire(key)
	defer h.release(key)

	t := h.snapshot()
	i := h.hash0(key, t.tableSize)
	if n := t.buckets[0][i].remove(key); n != nil {
		h.set.Add(-1)
		return n.val, true
	}
	j := h.hash1(key, t.tableSize)
	if n := t.buckets[1][j].remove(key); n != nil {
		h.set.Add(-1)
		return n.val, true
	}
	return 0, false
}

// Contains reports whether key is present.
func (h *CCuckooHash) Contains(key ckv.Key) bool {
	h.acquire(key)
	defer h.release(key)

	return h.containsLocked(h.snapshot(), key)
}

// resize doubles both tables and redistributes every entry, preferring
// each bucket under threshold, then under probe_size, in table 0 before
// table 1. expected is the snapshot the caller observed when it decided
// to resize; if another goroutine already resized past it, this is a
// no-op.
func (h *CCuckooHash) resize(expected *tables) {
	h.allLock()
	defer h.allUnlock()

	h.mu.RLock()
	current := h.t
	h.mu.RUnlock()
	if current != expected {
		return
	}

	next := newTables(expected.tableSize * 2)

	for side := 0; side < 2; side++ {
		for b := 0; b < expected.tableSize; b++ {
			old := expected.buckets[side][b]
			for n := old.head; n != nil; {
				nextN := n.next
				n.next = nil

				h0 := h.hash0(n.key, next.tableSize)
				h1 := h.hash1(n.key, next.tableSize)
				set0 := next.buckets[0][h0]
				set1 := next.buckets[1][h1]

				switch {
				case set0.size < h.threshold:
					set0.addAtTail(n)
				case set1.size < h.threshold:
					set1.addAtTail(n)
				case set0.size < h.probeSize:
					set0.addAtTail(n)
				case set1.size < h.probeSize:
					set1.addAtTail(n)
				default:
					set1.addAtTail(n)
				}

				n = nextN
			}
		}
	}

	h.mu.Lock()
	h.t = next
	h.mu.Unlock()
}
