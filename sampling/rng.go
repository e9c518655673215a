// Package sampling holds the random number streams and sample warps used by
// the renderer.
package sampling

import (
	"math/rand"
	"sync"
)

// BufferSize is how many uniforms an RNG pre-generates per refill.
const BufferSize = 1000

// SeedSource hands out seeds for per-worker streams.  It is the only piece of
// random state shared between goroutines.
type SeedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeedSource(seed int64) *SeedSource {
	return &SeedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *SeedSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63()
}

// RNG is a private uniform stream owned by a single worker.  It is not safe
// for concurrent use.
type RNG struct {
	src *rand.Rand
	buf []float64
	pos int
}

// NewRNG seeds a fresh stream from seeds.
func NewRNG(seeds *SeedSource) *RNG {
	return NewRNGFromSeed(seeds.Next())
}

func NewRNGFromSeed(seed int64) *RNG {
	return &RNG{
		src: rand.New(rand.NewSource(seed)),
		buf: make([]float64, BufferSize),
		pos: BufferSize,
	}
}

// Float64 returns a uniform value in [0, 1).
func (r *RNG) Float64() float64 {
	if r.pos == len(r.buf) {
		for i := range r.buf {
			r.buf[i] = r.src.Float64()
		}
		r.pos = 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

// Intn returns a uniform integer in [0, n), drawn from the buffered stream.
func (r *RNG) Intn(n int) int {
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
