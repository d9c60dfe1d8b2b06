// Package openaddrhash implements OpenAddrHash: a single-mutex,
// linear-probed open-addressed hash table. Each slot is EMP (never used),
// DEL (tombstoned) or OCC (occupied); find and delete both stop at the
// first EMP slot they probe, since a gap with no tombstone proves the key
// was never inserted here. The table resizes — doubling, re-probing every
// occupied slot into a fresh array — once occupancy exceeds 4/5 of
// capacity.
package openaddrhash

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

// OpenAddrHash is a resizable open-addressed hash table guarded by one mutex.
type OpenAddrHash struct {
	mu        sync.Mutex
	hasher    *xhash.Hasher
	slots     []slot
	tableSize int
	setSize   int
}

var _ ckv.Set = (*OpenAddrHash)(nil)

// New creates an OpenAddrHash with tableSize slots.
func New(tableSize int) *OpenAddrHash {
	if tableSize < 1 {
		tableSize = 1
	}
	return &OpenAddrHash{
		hasher:    xhash.New(0x1b873593),
		slots:     make([]slot, tableSize),
		tableSize: tableSize,
	}
}

func (h *OpenAddrHash) probe(key ckv.Key, i, tableSize int) int {
	return int((h.hasher.Sum64(int64(key)) + uint64(i)) % uint64(tableSize))
}

// Insert adds (key, val) iff key is not already present. Fails if the
// table is completely full of occupied slots (never resizes into that
// state under the 4/5 load factor policy, but a saturated probe sequence
// still reports failure rather than looping forever).
func (h *OpenAddrHash) Insert(key ckv.Key, val ckv.Value) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := 0; i < h.tableSize; i++ {
		s := &h.slots[h.probe(key, i, h.tableSize)]
		if s.status == empty {
			break
		}
		if s.status == occupied && s.key == key {
			return false
		}
	}
	for i := 0; i < h.tableSize; i++ {
		idx := h.probe(key, i, h.tableSize)
		s := &h.slots[idx]
		if s.status != occupied {
			s.key, s.val, s.status = key, val, occupied
			h.setSize++
			if h.setSize*5 > h.tableSize*4 {
				h.resize()
			}
			return true
		}
	}
	return false
}

// Remove deletes the entry with key if present.
func (h *OpenAddrHash) Remove(key ckv.Key) (ckv.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := 0; i < h.tableSize; i++ {
		idx := h.probe(key, i, h.tableSize)
		s := &h.slots[idx]
		if s.status == empty {
			return 0, false
		}
		if s.status == occupied && s.key == key {
			val := s.val
			s.status = deleted
			h.setSize--
			return val, true
		}
	}
	return 0, false
}

// Contains reports whether key is present.
func (h *OpenAddrHash) Contains(key ckv.Key) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := 0; i < h.tableSize; i++ {
		idx := h.probe(key, i, h.tableSize)
		s := &h.slots[idx]
		if s.status == empty {
			return false
		}
		if s.status == occupied && s.key == key {
			return true
		}
	}
	return false
}

// resize doubles the slot array and re-probes every occupied slot into it.
// Caller must hold h.mu.
func (h *OpenAddrHash) resize() {
	old := h.slots
	newSize := h.tableSize * 2
	newSlots := make([]slot, newSize)

	for _, s := range old {
		if s.status != occupied {
			continue
		}
		for j := 0; j < newSize; j++ {
			idx := h.probe(s.key, j, newSize)
			if newSlots[idx].status != occupied {
				newSlots[idx] = slot{key: s.key, val: s.val, status: occupied}
				break
			}
		}
	}

	h.slots = newSlots
	h.tableSize = newSize
}
