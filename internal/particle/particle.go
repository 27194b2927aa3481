// Package particle holds the typed particles of a toroidal world: their
// storage, per-type groups, integration and snapshots for the views.
package particle

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivierh59500/particle-rules/internal/force"
)

// ErrRange is returned for a type whose interaction band is empty.
var ErrRange = errors.New("particle: range min must be below range max")

// Type is a particle type. It is immutable once created.
type Type struct {
	id       int
	name     string
	rangeMin float64
	rangeMax float64
}

// NewType creates a type. IDs start at 1, 0 marks an empty snapshot cell.
func NewType(id int, name string, rangeMin, rangeMax float64) (*Type, error) {
	if id < 1 {
		return nil, fmt.Errorf("particle: type id %d must be positive", id)
	}
	if rangeMin >= rangeMax {
		return nil, fmt.Errorf("%w: type %d has [%g, %g]", ErrRange, id, rangeMin, rangeMax)
	}
	return &Type{id: id, name: name, rangeMin: rangeMin, rangeMax: rangeMax}, nil
}

func (t *Type) ID() int           { return t.id }
func (t *Type) Name() string      { return t.name }
func (t *Type) RangeMin() float64 { return t.rangeMin }
func (t *Type) RangeMax() float64 { return t.rangeMax }

// Particle struct: position, velocity and type
type Particle struct {
	Pos  r2.Vec
	Vel  r2.Vec
	Kind *Type
}

func (p *Particle) X() float64       { return p.Pos.X }
func (p *Particle) Y() float64       { return p.Pos.Y }
func (p *Particle) Type() force.Band { return p.Kind }

// InfluenceVelocity folds a force sample into the velocity: v += f*g.
// Damping is left to World.Integrate.
func (p *Particle) InfluenceVelocity(fx, fy, g float64) {
	p.Vel.X += fx * g
	p.Vel.Y += fy * g
}
