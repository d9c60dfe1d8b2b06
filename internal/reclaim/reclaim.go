// Package reclaim provides epoch-based memory reclamation for the lock-free
// Set and Queue variants that physically unlink nodes while a concurrent
// traversal may still hold a pointer to them: HarrisList, FomitchevList, and
// MSQueue. None of the example repos in this corpus implement a reclamation
// scheme — the teacher's SkipTrie and the original C sources alike leak
// nodes for the lifetime of the process — so this is written from the
// general shape of epoch GC (a global epoch counter, per-goroutine
// announcement of "currently active in epoch E", and per-epoch retire
// lists freed once no goroutine can still be observing them), not lifted
// from any single example.
//
// Structures that get their reclamation safety "for free" from locking
// (FineList, LazyList, the lazy/plain skiplists, the lock-based hash
// tables) do not use this package: a deletable node there is always locked
// by its predecessor at the moment of physical unlink, which already rules
// out a concurrent dereference of freed memory. LockFreeSkiplist and
// LLSCQueue also skip it: both simply unlink and let the unlinked node
// become unreachable, relying on Go's garbage collector rather than an
// explicit retire list (see DESIGN.md for the reasoning, already applied
// to LLSCQueue's dropped ExitTag protocol).
package reclaim

import (
	"sync"
	"sync/atomic"
)

// Domain tracks one reclaimable structure's epoch and retire lists. Each
// lock-free package embeds a *Domain and calls Enter/Exit around every
// operation, and Retire instead of letting go of an unlinked node directly.
type Domain struct {
	epoch      atomic.Uint64
	active     sync.Map // goroutine announcement slot id -> *announcement
	mu         sync.Mutex
	retired    [3][]any // one retire list per epoch mod 3
	sinceAdvance atomic.Int32
}

type announcement struct {
	epoch atomic.Uint64 // 0 means "not active"
}

// NewDomain creates a reclamation domain starting at epoch 0.
func NewDomain() *Domain {
	return &Domain{}
}

// slotKey is not used as a key: Enter keys each announcement in
// Domain.active by a freshly allocated pointer, and only the announcement
// values themselves are recycled through slotPool.
type slotKey struct{}

var slotPool = sync.Pool{New: func() any { return new(announcement) }}

// Guard is returned by Enter; call Exit when the operation is done.
type Guard struct {
	d   *Domain
	ann *announcement
	key any
}

// Enter announces that the calling goroutine is about to dereference
// pointers belonging to d, pinning the current epoch so Retire'd nodes from
// this epoch or later are not freed until Exit.
func (d *Domain) Enter() *Guard {
	ann := slotPool.Get().(*announcement)
	e := d.epoch.Load()
	ann.epoch.Store(e + 1) // +1: never 0, so 0 unambiguously means "inactive"
	key := new(byte)
	d.active.Store(key, ann)
	return &Guard{d: d, ann: ann, key: key}
}

// Exit ends the announcement started by Enter.
func (g *Guard) Exit() {
	g.ann.epoch.Store(0)
	g.d.active.Delete(g.key)
	slotPool.Put(g.ann)
}

// Retire records node as logically unlinked and no longer reachable from
// the structure's root, deferring its actual release until no active
// goroutine could still hold a reference taken before the unlink.
func (d *Domain) Retire(node any) {
	e := d.epoch.Load()
	d.mu.Lock()
	d.retired[e%3] = append(d.retired[e%3], node)
	d.mu.Unlock()

	if d.sinceAdvance.Add(1) >= 64 {
		d.sinceAdvance.Store(0)
		d.TryAdvance()
	}
}

// TryAdvance bumps the global epoch and frees the retire list that is now
// two epochs stale, provided no goroutine is still announced in it. It is
// safe to call at any time, including never (reclamation then degrades to
// the teacher's leak-for-test behavior, never to a use-after-free).
func (d *Domain) TryAdvance() {
	cur := d.epoch.Load()

	safe := true
	d.active.Range(func(_, v any) bool {
		ann := v.(*announcement)
		e := ann.epoch.Load()
		if e != 0 && e <= cur {
			safe = false
			return false
		}
		return true
	})
	if !safe {
		return
	}

	if !d.epoch.CompareAndSwap(cur, cur+1) {
		return
	}

	stale := (cur + 2) % 3 // the slot two epochs behind cur+1 is fully quiescent
	d.mu.Lock()
	d.retired[stale] = d.retired[stale][:0]
	d.mu.Unlock()
}
