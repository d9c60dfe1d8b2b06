// Package xrand provides helpers for the skiplist variants: a level
// generator (Bernoulli trials, p=0.5, capped at maxLevel) and a generic
// sync.Pool wrapper for reusable scratch buffers.
package xrand

import (
	"math/rand"
	"sync"
)

// LevelGenerator picks a random tower height via repeated coin flips,
// the same scheme the teacher's randomHeight uses for its x-fast trie
// tower, generalized to an arbitrary maxLevel instead of the fixed LogLogU.
type LevelGenerator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	maxLevel int
}

// NewLevelGenerator seeds a generator capped at maxLevel (exclusive upper
// bound on the returned level, 0-indexed: results are in [0, maxLevel-1]).
func NewLevelGenerator(seed int64, maxLevel int) *LevelGenerator {
	if maxLevel < 1 {
		maxLevel = 1
	}
	return &LevelGenerator{
		rng:      rand.New(rand.NewSource(seed)),
		maxLevel: maxLevel,
	}
}

// Random returns a level in [0, maxLevel-1]; each further level is reached
// with probability 1/2, so level L is half as likely as level L-1 (classic
// geometric/Bernoulli skiplist level distribution).
func (g *LevelGenerator) Random() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	level := 0
	for level < g.maxLevel-1 && g.rng.Float64() < 0.5 {
		level++
	}
	return level
}

// Scratch holds the per-goroutine preds[]/succs[] arrays a skiplist search
// needs, sized maxLevel so a search never allocates on the hot path.
type Scratch struct {
	Preds []unsafePtr
	Succs []unsafePtr
}

// unsafePtr is an opaque slot; each skiplist package instantiates its own
// typed scratch pool instead of using this placeholder (Go generics make a
// shared implementation awkward across differently-shaped node types), but
// the pool mechanics below are shared.
type unsafePtr = any

// Pool hands out reusable scratch buffers through a sync.Pool. A buffer
// belongs to one goroutine between Get and Put, but is not tied to any
// particular goroutine.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a scratch pool that calls newFn to allocate a buffer
// whenever the pool is empty.
func NewPool(newFn func() any) *Pool {
	return &Pool{pool: sync.Pool{New: newFn}}
}

// Get retrieves a scratch buffer, allocating one if the pool is empty.
func (p *Pool) Get() any { return p.pool.Get() }

// Put returns a scratch buffer to the pool for reuse.
func (p *Pool) Put(v any) { p.pool.Put(v) }
