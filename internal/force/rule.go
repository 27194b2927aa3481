// Package force implements the rule based force engine: the toroidal metric,
// the per type-pair force rules and the scheduler that runs them every tick.
package force

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrWorldSize is returned when a rule is built for a world with a
	// non-positive width or height.
	ErrWorldSize = errors.New("force: world size must be positive")

	// ErrBand is returned when a source particle type has an empty
	// interaction band (RangeMin >= RangeMax).
	ErrBand = errors.New("force: interaction band is empty")

	// ErrBufferSize is returned by Accumulate when the output buffer does
	// not match the affected group.
	ErrBufferSize = errors.New("force: buffer does not match affected group")
)

// Band is the interaction band of a particle type: the open interval of
// distances at which particles of that type exert influence as a source.
type Band interface {
	RangeMin() float64
	RangeMax() float64
}

// Body is the narrow view a rule needs of a particle. Rules read position and
// type, and only ever write through InfluenceVelocity.
type Body interface {
	X() float64
	Y() float64
	Type() Band
	InfluenceVelocity(fx, fy, g float64)
}

// Rule defines how particles of one group react to particles of another.
//
// The groups are borrowed from the owner of the particles and may alias each
// other. A rule holds no per-tick state, so the same value is evaluated
// every tick.
type Rule struct {
	affected []Body
	source   []Body
	g        float64
	width    float64
	height   float64
}

// NewRule creates a rule where affected reacts to source with strength g.
func NewRule(affected, source []Body, g float64, width, height int) (*Rule, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrWorldSize, width, height)
	}
	for i, q := range source {
		t := q.Type()
		if t.RangeMin() >= t.RangeMax() {
			return nil, fmt.Errorf("%w: source particle %d has [%g, %g]",
				ErrBand, i, t.RangeMin(), t.RangeMax())
		}
	}
	return &Rule{
		affected: affected,
		source:   source,
		g:        g,
		width:    float64(width),
		height:   float64(height),
	}, nil
}

// Strength returns the strength coefficient g.
func (r *Rule) Strength() float64 { return r.g }

// SetStrength sets g for subsequent evaluations. It must not be called while
// the rule is being evaluated.
func (r *Rule) SetStrength(g float64) { r.g = g }

// Affected returns the group that receives velocity updates.
func (r *Rule) Affected() []Body { return r.affected }

// Source returns the group whose positions and bands produce the force.
func (r *Rule) Source() []Body { return r.source }

// Apply runs one full pass and hands the force on every affected particle to
// its InfluenceVelocity. Calling it twice in a tick applies the force twice.
func (r *Rule) Apply() {
	if len(r.source) == 0 {
		return
	}
	for _, p := range r.affected {
		f := r.forceOn(p)
		p.InfluenceVelocity(f.X, f.Y, r.g)
	}
}

// Accumulate evaluates the rule like Apply but stores the unscaled force on
// affected[i] into out[i] instead of touching velocities.
func (r *Rule) Accumulate(out []r2.Vec) error {
	if len(out) != len(r.affected) {
		return fmt.Errorf("%w: have %d, need %d", ErrBufferSize, len(out), len(r.affected))
	}
	if len(r.source) == 0 {
		for i := range out {
			out[i] = r2.Vec{}
		}
		return nil
	}
	for i, p := range r.affected {
		out[i] = r.forceOn(p)
	}
	return nil
}

// forceOn sums the unit vectors from p toward every source particle whose
// toroidal distance lies strictly inside that particle's band. Coincident
// particles (d == 0) never contribute, whatever the band.
func (r *Rule) forceOn(p Body) r2.Vec {
	var f r2.Vec
	px, py := p.X(), p.Y()
	for _, q := range r.source {
		dx := Delta(px, q.X(), r.width)
		dy := Delta(py, q.Y(), r.height)
		d := math.Sqrt(dx*dx + dy*dy)
		if d == 0 {
			continue
		}

		t := q.Type()
		if d > t.RangeMin() && d < t.RangeMax() {
			f.X += dx / d
			f.Y += dy / d
		}
	}
	return f
}
