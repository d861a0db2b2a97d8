package game

import (
	"math/rand/v2"
	"sync"
)

// RandomSource decides launch directions.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG draws from the runtime's shared generator.
func DefaultRNG() RandomSource { return globalRNG{} }

// Replicable RNG for tests and replays.
type seededRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// launchSign returns -1 or 1 with equal probability.
func launchSign(rng RandomSource) float64 {
	if rng.Float64() < 0.5 {
		return -1
	}
	return 1
}
