// Package xhash provides the key-to-bucket hash functions shared by the
// chained, open-addressed, striped, refinable and cuckoo hash tables. It
// wraps murmur3 instead of each table hand-rolling k mod table_size against
// the raw key, so keys that are congruent mod a small table size don't
// collide any more often than murmur3's avalanche already predicts.
package xhash

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// Hasher produces a single 64-bit hash of an int64 key under a fixed seed.
// ChainHash, OpenAddrHash, StripedHash and RefinableHash each hold one
// Hasher, each with its own fixed nonzero seed, and reduce its output mod
// table_size themselves.
type Hasher struct {
	seed uint32
}

// New returns a Hasher seeded with seed.
func New(seed uint32) *Hasher {
	return &Hasher{seed: seed}
}

// Sum64 hashes k.
func (h *Hasher) Sum64(k int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(k))
	return murmur3.Sum64WithSeed(buf[:], h.seed)
}

// Pair holds the two independent hash functions h0, h1 a cuckoo-family
// table needs. The two seeds are fixed, distinct constants so every
// CuckooHash/ConcurrentCuckooHash instance agrees on the same two
// functions without needing to coordinate seeds at construction time.
type Pair struct {
	h0, h1 *Hasher
}

// NewPair returns the fixed (h0, h1) pair used by the cuckoo-family tables.
func NewPair() *Pair {
	return &Pair{h0: New(0x9ae16a3b), h1: New(0xc2b2ae35)}
}

// H0 hashes k under the first function.
func (p *Pair) H0(k int64) uint64 { return p.h0.Sum64(k) }

// H1 hashes k under the second function.
func (p *Pair) H1(k int64) uint64 { return p.h1.Sum64(k) }
