// Package cuckoohash implements CuckooHash: two tables, two hash
// functions, one mutex. Every key has exactly one candidate slot in each
// table; Insert displaces whatever currently occupies its slot in table 0,
// tries to place the displaced entry in table 1, and keeps bouncing
// entries between tables until one lands in an empty (or tombstoned)
// slot, up to table_size attempts. If that many attempts doesn't resolve
// it, the whole table doubles and the displacement loop restarts, up to
// 10 times.
package cuckoohash

import (
	"sync"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv/xhash"
)

type status uint8

const (
	empty status = iota
	deleted
	occupied
)

type slot struct {
	key    ckv.Key
	val    ckv.Value
	status status
}

const maxResizeAttempts = 10

// CuckooHash is a single-threaded-style (one global mutex) cuckoo hash
// table with two candidate tables per key.
type CuckooHash struct {
	mu        sync.Mutex
	pair      *xhash.Pair
	table     [2][]slot
	tableSize int
	setSize   int
}

var _ ckv.Set = (*CuckooHash)(nil)

// New creates a CuckooHash with tableSize slots in each of its two tables.
func New(tableSize int) *CuckooHash {
	if tableSize < 1 {
		tableSize = 1
	}
	return &CuckooHash{
		pair:      xhash.NewPair(),
		table:     [2][]slot{make([]slot, tableSize), make([]slot, tableSize)},
		tableSize: tableSize,
	}
}

func (h *CuckooHash) bucket(table int, key ckv.Key) int {
	if table == 0 {
		return int(h.pair.H0(int64(key)) % uint64(h.tableSize))
	}
	return int(h.pair.H1(int64(key)) % uint64(h.tableSize))
}

func (h *CuckooHash) findSlot(key ckv.Key) (table int, idx int, ok bool) {
	for t := 0; t < 2; t++ {
		i := h.bucket(t, key)
		if h.table[t][i].status == occupied && h.table[t][i].key == key {
			return t, i, true
		}
	}
	return 0, 0, false
}

// swap places entry into table `into`'s candidate slot for entry.key,
// returning whatever previously lived there. Reports true if the slot was
// not occupied, i.e. entry has now come to rest.
func (h *CuckooHash) swap(into int, entry slot) (displaced slot, settled bool) {
	i := h.bucket(into, entry.key)
	displaced = h.table[into][i]
	h.table[into][i] = entry
	return displaced, displaced.status != occupied
}

// Insert adds (key, val) iff key is not already present.
func (h *CuckooHash) Insert(key ckv.Key, val ckv.Value) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, _, ok := h.findSlot(key); ok {
		return false
	}

	entry := slot{key: key, val: val, status: occupied}
	for attempt := 0; attempt < maxResizeAttempts; attempt++ {
		left, ok := h.place(entry)
		if ok {
			h.setSize++
			return true
		}
		entry = left
		h.resize()
	}
	return false
}

// place runs the displacement loop: bounce entry between table 0 and
// table 1 for up to tableSize rounds, returning true once it settles into
// a non-occupied slot. On failure it returns false together with the entry
// that is still left without a slot. See DESIGN.md for why this alternates
// tables 0 and 1, rather than following the original source's
// swap_node(ht, 1, ...) then swap_node(ht, 2, ...) calls, which both
// resolve to table 1 under get_node's "no == 0 ? table 0 : table 1" dispatch.
func (h *CuckooHash) place(entry slot) (slot, bool) {
	for i := 0; i < h.tableSize; i++ {
		displaced, settled := h.swap(0, entry)
		if settled {
			return slot{}, true
		}
		entry = displaced
		displaced, settled = h.swap(1, entry)
		if settled {
			return slot{}, true
		}
		entry = displaced
	}
	return entry, false
}

// Remove deletes the entry with key if present.
func (h *CuckooHash) Remove(key ckv.Key) (ckv.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, i, ok := h.findSlot(key)
	if !ok {
		return 0, false
	}
	val := h.table[t][i].val
	h.table[t][i].status = deleted
	h.setSize--
	return val, true
}

// Contains reports whether key is present.
func (h *CuckooHash) Contains(key ckv.Key) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, _, ok := h.findSlot(key)
	return ok
}

// resize doubles both tables and reinserts every occupied entry, doubling
// again from the old contents whenever one entry cannot be placed. Caller
// must hold h.mu.
func (h *CuckooHash) resize() {
	oldTable := h.table
	oldSize := h.tableSize

	for placedAll := false; !placedAll; {
		h.tableSize *= 2
		h.table = [2][]slot{make([]slot, h.tableSize), make([]slot, h.tableSize)}
		placedAll = true
		for t := 0; t < 2 && placedAll; t++ {
			for i := 0; i < oldSize && placedAll; i++ {
				if oldTable[t][i].status == occupied {
					_, placedAll = h.place(slot{key: oldTable[t][i].key, val: oldTable[t][i].val, status: occupied})
				}
			}
		}
	}
}
