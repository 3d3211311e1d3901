package analyze

import "math/rand"

// NoiseSource supplies the bounded jitter applied to fallback reference
// measurements. It is injected rather than drawn from a global RNG so tests
// can disable it for reproducibility.
type NoiseSource interface {
	// Jitter returns a value in [-scale, scale].
	Jitter(scale float64) float64
}

// SeededNoise is a deterministic pseudo-random jitter source.
type SeededNoise struct {
	rng *rand.Rand
}

// NewSeededNoise creates a jitter source from the given seed.
func NewSeededNoise(seed int64) *SeededNoise {
	return &SeededNoise{rng: rand.New(rand.NewSource(seed))}
}

// Jitter returns a uniform value in [-scale, scale].
func (s *SeededNoise) Jitter(scale float64) float64 {
	return (s.rng.Float64()*2 - 1) * scale
}

// NoNoise disables fallback jitter entirely.
type NoNoise struct{}

// Jitter always returns 0.
func (NoNoise) Jitter(float64) float64 { return 0 }
