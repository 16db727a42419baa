// Package vcache implements the bounded, thread-safe, lossy value cache
// (SPEC_FULL section 4.3): a memo from a 64-bit pair fingerprint to a
// single float32. It is sharded across stripes, each backed by an LRU so
// write-heavy matrix fills don't serialize on one lock the way the
// teacher's single sync.Map (app/service.OnlineClients in the source
// repo) would under N^2 cell traffic.
package vcache

import (
	"runtime"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a striped, bounded map from fingerprint to value. The zero
// value is not useful; construct with New.
type Cache struct {
	stripes []*stripe
	mask    uint64
}

type stripe struct {
	mu sync.Mutex
	c  *lru.Cache[uint64, float32]
}

// New creates a Cache holding about capacity entries in total (capacity
// divided evenly, rounded down, but at least one entry per stripe, so a
// capacity smaller than the stripe count holds one entry per stripe),
// spread across a power-of-two number of stripes sized to the available
// parallelism so concurrent workers rarely contend on the same stripe.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	n := nextPow2(4 * runtime.GOMAXPROCS(0))
	if n < 1 {
		n = 1
	}
	perStripe := capacity / n
	if perStripe < 1 {
		perStripe = 1
	}
	stripes := make([]*stripe, n)
	for i := range stripes {
		c, _ := lru.New[uint64, float32](perStripe)
		stripes[i] = &stripe{c: c}
	}
	return &Cache{stripes: stripes, mask: uint64(n - 1)}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (c *Cache) stripeFor(key uint64) *stripe {
	// top bits: the fingerprint mixer already spreads entropy there, so
	// stripe selection and LRU bucketing don't correlate.
	return c.stripes[(key>>56)&c.mask]
}

// Lookup probes the cache. On miss it returns ok=false; the caller must
// not rely on a prior Store being visible (entries may be silently
// evicted at any time).
func (c *Cache) Lookup(key uint64) (float32, bool) {
	s := c.stripeFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Get(key)
}

// Store inserts or overwrites key's value. Concurrent Store/Lookup calls
// on the same key are safe; a lost update under race is acceptable since
// the value is a pure function of the key.
func (c *Cache) Store(key uint64, v float32) {
	s := c.stripeFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Add(key, v)
}

// mix64 is a SplitMix64-style finalizer: a non-trivial bit-mixing
// combiner, used to fold two ordered hashes and a measure tag into one
// fingerprint (never plain XOR, which would let symmetric (h(x), h(y))
// pairs collide trivially with their own reverse on cancellation).
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Fingerprint builds the cache key for a pair (hx, hy) under the measure
// identified by measureTag. For symmetric measures the pair is sorted
// first so Fingerprint(t, a, b) == Fingerprint(t, b, a); asymmetric
// measures use the pair unsorted.
func Fingerprint(measureTag uint32, hx, hy uint64, symmetric bool) uint64 {
	if symmetric && hx > hy {
		hx, hy = hy, hx
	}
	acc := mix64(hx) ^ mix64(hy+0x9e3779b97f4a7c15)
	acc ^= uint64(measureTag) * 0x2545f4914f6cdd1d
	return mix64(acc)
}

// selfCallTag is XORed into a measure's tag before building a
// self-similarity/single-string sub-call key. A measure's own Compare may
// be memoized in the same Cache under Fingerprint(tag, h, h, true) for the
// diagonal (x==y) pair, so a self-call key built from the bare tag would
// collide with, and get silently overwritten by, that pair-level entry.
// XORing in a constant outside the measure tag namespace (tags are small
// integers; see each measure's Tag method) keeps the two key spaces
// disjoint.
const selfCallTag uint32 = 0x53454c46 // "SELF"

// SelfFingerprint builds the cache key for a measure's internal
// single-string sub-call (a kernel's self-similarity, a compressor's
// compressed length of x alone), keyed on h. It never collides with a
// Fingerprint(tag, hx, hy, ...) pair-level key for the same tag, including
// the diagonal case hx == hy == h.
func SelfFingerprint(measureTag uint32, h uint64) uint64 {
	return Fingerprint(measureTag^selfCallTag, h, h, true)
}
