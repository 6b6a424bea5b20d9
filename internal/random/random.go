package random

import (
	"math/rand"
	"sync"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_randomizer.go github.com/KirkDiggler/spyround/internal/random Randomizer

// Randomizer is the source of every random choice a round makes
type Randomizer interface {
	// Intn returns a uniform integer in [0, n)
	Intn(n int) int

	// Float64 returns a uniform float in [0.0, 1.0)
	Float64() float64
}

// Roller provides random numbers from a seeded source
type Roller struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for the roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new roller
func New(cfg *Config) *Roller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Roller{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Intn returns a uniform integer in [0, n). n <= 0 yields 0.
func (r *Roller) Intn(n int) int {
	if n <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(n)
}

// Float64 returns a uniform float in [0.0, 1.0)
func (r *Roller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Float64()
}

// Sample picks k distinct indices uniformly from [0, n) using a partial
// Fisher-Yates shuffle. The result is in draw order.
func Sample(r Randomizer, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return []int{}
	}

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}

	for i := 0; i < k; i++ {
		j := i + r.Intn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:k]
}
