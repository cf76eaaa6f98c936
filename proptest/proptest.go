// Package proptest provides property-based testing utilities with seeded
// random generation for reproducible tests.
//
// Property-based testing generates random inputs and verifies that certain
// invariants (properties) always hold. When a test fails, the seed is logged
// so the failure can be reproduced with PROPTEST_SEED.
//
// Basic usage:
//
//	func TestMyProperty(t *testing.T) {
//	    proptest.QuickCheck(t, "my property", func(g *proptest.Generator) bool {
//	        n := g.IntRange(1, 100)
//	        return n >= 1 && n <= 100
//	    })
//	}
package proptest

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// Generator wraps a seeded random number generator for reproducible
// random value generation.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// New creates a new Generator with the given seed.
// If seed is 0, uses the current time as the seed.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed used by this generator.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Intn returns a random int in [0, n).
// Panics if n <= 0.
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}

// IntRange returns a random int in [min, max].
// Panics if min > max.
func (g *Generator) IntRange(min, max int) int {
	if min > max {
		panic("proptest: IntRange min > max")
	}
	if min == max {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}

// Float64 returns a random float64 in [0.0, 1.0).
func (g *Generator) Float64() float64 {
	return g.rng.Float64()
}

// Bool returns a random boolean with 50% probability for each value.
func (g *Generator) Bool() bool {
	return g.rng.Intn(2) == 1
}

// Config controls property test behavior.
type Config struct {
	// NumTrials is the number of test iterations. Default: 100.
	NumTrials int

	// Seed is the random seed for reproducibility. 0 means time-based.
	Seed int64
}

// DefaultConfig returns sensible defaults for property testing.
func DefaultConfig() Config {
	return Config{NumTrials: 100}
}

// effectiveSeed returns the seed to use, checking the environment first.
func effectiveSeed(cfg Config) int64 {
	if envSeed := os.Getenv("PROPTEST_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

// Check runs a property multiple times with different random inputs.
// On failure, it logs the seed for reproducibility.
func Check(t *testing.T, name string, cfg Config, prop func(g *Generator) bool) {
	t.Helper()

	if cfg.NumTrials <= 0 {
		cfg.NumTrials = 100
	}

	seed := effectiveSeed(cfg)
	g := New(seed)

	for i := 0; i < cfg.NumTrials; i++ {
		if !prop(g) {
			t.Errorf("proptest %q failed on trial %d (seed=%d, use PROPTEST_SEED=%d to reproduce)",
				name, i+1, seed, seed)
			return
		}
	}
}

// QuickCheck runs a property with default configuration (100 trials).
func QuickCheck(t *testing.T, name string, prop func(g *Generator) bool) {
	t.Helper()
	Check(t, name, DefaultConfig(), prop)
}

// ForAll runs a property that generates a value and returns both the value
// and whether the property holds. On failure, it logs the generated value.
func ForAll[T any](t *testing.T, name string, numTrials int, prop func(g *Generator) (T, bool)) {
	t.Helper()

	seed := effectiveSeed(Config{})
	g := New(seed)

	for i := 0; i < numTrials; i++ {
		val, ok := prop(g)
		if !ok {
			t.Errorf("proptest %q failed on trial %d with value %+v (seed=%d, use PROPTEST_SEED=%d to reproduce)",
				name, i+1, val, seed, seed)
			return
		}
	}
}
