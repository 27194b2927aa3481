package force

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

type band struct{ min, max float64 }

func (b *band) RangeMin() float64 { return b.min }
func (b *band) RangeMax() float64 { return b.max }

// body records every velocity influence it receives.
type body struct {
	x, y   float64
	vx, vy float64
	band   *band
	calls  int
}

func (b *body) X() float64 { return b.x }
func (b *body) Y() float64 { return b.y }
func (b *body) Type() Band { return b.band }

func (b *body) InfluenceVelocity(fx, fy, g float64) {
	b.vx += fx * g
	b.vy += fy * g
	b.calls++
}

func bodies(bs ...*body) []Body {
	out := make([]Body, len(bs))
	for i, b := range bs {
		out[i] = b
	}
	return out
}

func TestNewRuleValidation(t *testing.T) {
	ok := &body{band: &band{0, 10}}
	empty := &body{band: &band{10, 10}}

	_, err := NewRule(bodies(ok), bodies(ok), 1, 0, 100)
	assert.ErrorIs(t, err, ErrWorldSize)
	_, err = NewRule(bodies(ok), bodies(ok), 1, 100, -1)
	assert.ErrorIs(t, err, ErrWorldSize)
	_, err = NewRule(bodies(ok), bodies(ok, empty), 1, 100, 100)
	assert.ErrorIs(t, err, ErrBand)

	r, err := NewRule(bodies(ok), bodies(ok), 0.5, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.5, r.Strength())
}

func TestApplyWrapsTowardShortestPath(t *testing.T) {
	b := &band{0, 20}
	p := &body{x: 10, y: 10, band: b}
	q := &body{x: 95, y: 10, band: b}

	r, err := NewRule(bodies(p), bodies(q), 1.0, 100, 100)
	require.NoError(t, err)
	r.Apply()

	assert.Equal(t, -1.0, p.vx)
	assert.Equal(t, 0.0, p.vy)
	assert.Equal(t, 1, p.calls)
	assert.Zero(t, q.calls)
}

func TestApplyBandIsOpen(t *testing.T) {
	const eps = 1e-6
	tests := []struct {
		name   string
		dist   float64
		inBand bool
	}{
		{"at min", 5, false},
		{"just above min", 5 + eps, true},
		{"inside", 7.5, true},
		{"just below max", 10 - eps, true},
		{"at max", 10, false},
		{"beyond max", 12, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &band{5, 10}
			p := &body{x: 50, y: 50, band: b}
			q := &body{x: 50 + tt.dist, y: 50, band: b}

			r, err := NewRule(bodies(p), bodies(q), 1, 100, 100)
			require.NoError(t, err)
			r.Apply()

			if tt.inBand {
				assert.Equal(t, 1.0, p.vx)
			} else {
				assert.Equal(t, 0.0, p.vx)
			}
			assert.Equal(t, 1, p.calls)
		})
	}
}

func TestApplyUsesSourceBand(t *testing.T) {
	p := &body{x: 50, y: 50, band: &band{0, 1}}
	q := &body{x: 50, y: 40, band: &band{0, 30}}

	r, err := NewRule(bodies(p), bodies(q), 2, 100, 100)
	require.NoError(t, err)
	r.Apply()

	assert.Equal(t, 0.0, p.vx)
	assert.Equal(t, -2.0, p.vy)
}

func TestApplySumsUnitVectors(t *testing.T) {
	b := &band{0, 50}
	p := &body{x: 50, y: 50, band: b}
	near := &body{x: 51, y: 50, band: b}
	far := &body{x: 50, y: 90, band: b}

	r, err := NewRule(bodies(p), bodies(near, far), 1, 100, 100)
	require.NoError(t, err)
	r.Apply()

	// distance does not weight the contribution
	assert.Equal(t, 1.0, p.vx)
	assert.Equal(t, 1.0, p.vy)
}

func TestApplySkipsCoincident(t *testing.T) {
	b := &band{0, 10}
	p := &body{x: 20, y: 20, band: b}
	twin := &body{x: 20, y: 20, band: b}
	group := bodies(p, twin)

	// affected and source alias, so each particle also meets itself
	r, err := NewRule(group, group, 1, 100, 100)
	require.NoError(t, err)
	r.Apply()

	for _, b := range []*body{p, twin} {
		assert.False(t, math.IsNaN(b.vx) || math.IsNaN(b.vy))
		assert.Equal(t, 0.0, b.vx)
		assert.Equal(t, 0.0, b.vy)
		assert.Equal(t, 1, b.calls)
	}
}

func TestApplyEmptyGroups(t *testing.T) {
	b := &band{0, 10}
	p := &body{x: 1, y: 1, vx: 3, vy: -2, band: b}

	r, err := NewRule(bodies(p), nil, 1, 100, 100)
	require.NoError(t, err)
	r.Apply()
	assert.Equal(t, 3.0, p.vx)
	assert.Equal(t, -2.0, p.vy)
	assert.Zero(t, p.calls)

	r, err = NewRule(nil, bodies(p), 1, 100, 100)
	require.NoError(t, err)
	assert.NotPanics(t, r.Apply)
	assert.Zero(t, p.calls)
}

func TestApplyNegatedStrength(t *testing.T) {
	layout := func() ([]*body, []*body) {
		rng := rand.New(rand.NewSource(3))
		b := &band{2, 30}
		var a, s []*body
		for i := 0; i < 20; i++ {
			a = append(a, &body{x: rng.Float64() * 100, y: rng.Float64() * 100, band: b})
			s = append(s, &body{x: rng.Float64() * 100, y: rng.Float64() * 100, band: b})
		}
		return a, s
	}

	pos, posSrc := layout()
	neg, negSrc := layout()
	attract, err := NewRule(bodies(pos...), bodies(posSrc...), 0.7, 100, 100)
	require.NoError(t, err)
	repel, err := NewRule(bodies(neg...), bodies(negSrc...), -0.7, 100, 100)
	require.NoError(t, err)
	attract.Apply()
	repel.Apply()

	moved := 0
	for i := range pos {
		assert.Equal(t, pos[i].vx, -neg[i].vx)
		assert.Equal(t, pos[i].vy, -neg[i].vy)
		if pos[i].vx != 0 || pos[i].vy != 0 {
			moved++
		}
	}
	assert.Positive(t, moved)
}

func TestSetStrength(t *testing.T) {
	b := &band{0, 20}
	p := &body{x: 10, y: 10, band: b}
	q := &body{x: 15, y: 10, band: b}

	r, err := NewRule(bodies(p), bodies(q), 1, 100, 100)
	require.NoError(t, err)
	r.Apply()
	r.SetStrength(-3)
	r.Apply()

	assert.Equal(t, -3.0, r.Strength())
	assert.Equal(t, 1.0-3.0, p.vx)
}

func TestAccumulate(t *testing.T) {
	b := &band{0, 20}
	p := &body{x: 10, y: 10, band: b}
	q := &body{x: 10, y: 95, band: b}

	r, err := NewRule(bodies(p), bodies(q), 4, 100, 100)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Accumulate(make([]r2.Vec, 2)), ErrBufferSize)

	out := []r2.Vec{{X: 9, Y: 9}}
	require.NoError(t, r.Accumulate(out))
	assert.Equal(t, r2.Vec{X: 0, Y: -1}, out[0])
	assert.Zero(t, p.calls, "accumulate must not touch velocity")

	empty, err := NewRule(bodies(p), nil, 4, 100, 100)
	require.NoError(t, err)
	require.NoError(t, empty.Accumulate(out))
	assert.Equal(t, r2.Vec{}, out[0])
}
