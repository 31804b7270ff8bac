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

// FillBytes fills dst with random bytes.
// Locks only once per call.
func (r *RNG) FillBytes(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.rand.Read(dst)
}

// NoiseVolume returns edge^3 random 8-bit voxels. The result does not
// compress.
func (r *RNG) NoiseVolume(edge int) []byte {
	v := make([]byte, edge*edge*edge)
	r.FillBytes(v)
	return v
}

// SmoothVolume returns edge^3 8-bit voxels forming a gradient along z
// with low-amplitude noise, similar to a real intensity brick.
func (r *RNG) SmoothVolume(edge int, base byte) []byte {
	v := make([]byte, edge*edge*edge)
	plane := edge * edge

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range v {
		v[i] = base + byte(i/plane) + byte(r.rand.Intn(4))
	}
	return v
}
