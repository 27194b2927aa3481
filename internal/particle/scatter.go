package particle

import (
	"fmt"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Layout selects how Scatter places new particles.
type Layout string

const (
	// Uniform spreads particles evenly over the world.
	Uniform Layout = "uniform"
	// Perlin concentrates particles where a noise field is high, which gives
	// the simulation clumps to start from instead of a flat gas.
	Perlin Layout = "perlin"
)

// Perlin noise parameters
const (
	noiseAlpha    = 2.0
	noiseBeta     = 2.0
	noiseOctaves  = 3
	noiseFeatures = 4.0 // noise periods across the world
	maxAttempts   = 32
)

// ParseLayout validates a layout name. The empty string means Uniform.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", Uniform:
		return Uniform, nil
	case Perlin:
		return Perlin, nil
	}
	return "", fmt.Errorf("particle: unknown layout %q", s)
}

// Scatter adds count particles of type t using the given layout.
func (w *World) Scatter(rng *rand.Rand, t *Type, count int, layout Layout) error {
	place := w.uniform(rng)
	if layout == Perlin {
		place = w.noisy(rng)
	}
	for i := 0; i < count; i++ {
		x, y := place()
		if _, err := w.Add(t, x, y); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) uniform(rng *rand.Rand) func() (float64, float64) {
	return func() (float64, float64) {
		return rng.Float64() * float64(w.Width), rng.Float64() * float64(w.Height)
	}
}

// noisy rejection-samples positions with an acceptance probability that
// follows the noise field. After maxAttempts the last candidate is kept.
func (w *World) noisy(rng *rand.Rand) func() (float64, float64) {
	p := perlin.NewPerlinRandSource(noiseAlpha, noiseBeta, noiseOctaves, rand.NewSource(rng.Int63()))
	width, height := float64(w.Width), float64(w.Height)
	return func() (float64, float64) {
		var x, y float64
		for i := 0; i < maxAttempts; i++ {
			x, y = rng.Float64()*width, rng.Float64()*height
			n := p.Noise2D(x/width*noiseFeatures, y/height*noiseFeatures)
			if rng.Float64() < (n+1)/2 {
				break
			}
		}
		return x, y
	}
}
