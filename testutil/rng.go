package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Shape returns a random dimension vector with rank in [1,maxRank] and
// every extent in [1,maxExtent].
func (r *RNG) Shape(maxRank, maxExtent int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dims := make([]int, 1+r.rand.Intn(maxRank))
	for i := range dims {
		dims[i] = 1 + r.rand.Intn(maxExtent)
	}
	return dims
}

// Index returns a random valid index tuple for dims.
func (r *RNG) Index(dims []int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := make([]int, len(dims))
	for i, d := range dims {
		idx[i] = r.rand.Intn(d)
	}
	return idx
}
