// Package filter implements the duplicate filter that gates insertion into the
// search frontier: a membership test over canonical position keys.
//
// The default implementation hashes each key once onto a fixed-size bit array,
// with no collision chaining: two distinct positions that hash alike are
// treated as the same position, and the later one is silently dropped. That is
// an accepted false-positive risk -- a position may be wrongly skipped, never
// wrongly revisited -- in exchange for a memory cost that does not grow with
// the search.
package filter

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Membership is the dedup collaborator the solver depends on.
type Membership interface {
	// TestAndSet marks the key as seen and reports whether it already was.
	// Safe for concurrent use.
	TestAndSet(key []byte) bool
}

// DefaultBits is the log2 size of the bit array: 2^32 flags (512 MiB),
// regardless of how many distinct states the search actually visits.
const DefaultBits = 32

// BitFilter is a single-hash bloom-style filter over a fixed bit array.
//
// The hash coefficients derive from the seed fixed at construction, so a
// search run is repeatable given the same seed, while different seeds shift
// the collision pattern.
type BitFilter struct {
	words []uint64
	mask  uint64
	mul   uint64
	init  uint64
}

var _ Membership = (*BitFilter)(nil)

// NewBitFilter creates a filter with 2^bits flags hashed with the given seed.
// bits must be in [6, 40]; use DefaultBits unless memory is constrained (tests
// use small filters).
func NewBitFilter(bits uint, seed uint64) (*BitFilter, error) {
	if bits < 6 || bits > 40 {
		return nil, errors.Errorf("filter bits must be in [6, 40], got %d", bits)
	}
	mixed := splitmix64(seed)
	return &BitFilter{
		words: make([]uint64, 1<<(bits-6)),
		mask:  1<<bits - 1,
		mul:   mixed | 1, // Multiplier must be odd.
		init:  splitmix64(mixed),
	}, nil
}

// splitmix64 scrambles the seed into the hash coefficients, so that any seed,
// zero included, yields a well-mixed odd multiplier.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ x>>30) * 0xBF58476D1CE4E5B9
	x = (x ^ x>>27) * 0x94D049BB133111EB
	return x ^ x>>31
}

// hash folds the key into an index in [0, 2^bits).
func (f *BitFilter) hash(key []byte) uint64 {
	h := f.init
	for _, b := range key {
		h = (h ^ uint64(b)) * f.mul
		h ^= h >> 29
	}
	h *= f.mul
	h ^= h >> 32
	return h & f.mask
}

// TestAndSet implements Membership with an atomic bit set, so workers of a
// parallel round can share the filter without extra locking.
func (f *BitFilter) TestAndSet(key []byte) bool {
	idx := f.hash(key)
	bit := uint64(1) << (idx & 63)
	old := atomic.OrUint64(&f.words[idx>>6], bit)
	return old&bit != 0
}

// ExactSet is the alternate Membership implementation: an exact hash set.
// Zero false positives, memory grows with the number of distinct states.
type ExactSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

var _ Membership = (*ExactSet)(nil)

// NewExactSet returns an empty exact membership set.
func NewExactSet() *ExactSet {
	return &ExactSet{seen: make(map[string]struct{})}
}

// TestAndSet implements Membership.
func (s *ExactSet) TestAndSet(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := string(key)
	if _, found := s.seen[k]; found {
		return true
	}
	s.seen[k] = struct{}{}
	return false
}

// Len returns the number of distinct keys seen.
func (s *ExactSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
