package particle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivierh59500/particle-rules/internal/force"
)

// World owns every particle of a simulation and the per-type groups the
// force rules borrow.
type World struct {
	Width, Height int
	Particles     []*Particle

	types  []*Type
	groups map[int][]force.Body
}

// NewWorld creates an empty world of the given size with the given types.
func NewWorld(width, height int, types ...*Type) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("particle: world size %dx%d must be positive", width, height)
	}
	w := &World{
		Width:  width,
		Height: height,
		groups: make(map[int][]force.Body, len(types)),
	}
	for _, t := range types {
		if _, dup := w.groups[t.ID()]; dup {
			return nil, fmt.Errorf("particle: duplicate type id %d", t.ID())
		}
		w.types = append(w.types, t)
		w.groups[t.ID()] = nil
	}
	return w, nil
}

// Types returns the registered types in registration order.
func (w *World) Types() []*Type { return w.types }

// Len returns the number of particles.
func (w *World) Len() int { return len(w.Particles) }

// Add places a particle of type t at (x, y), wrapped into the world.
//
// Rules keep the group slice they were built with, so every particle must be
// added before the rules are created.
func (w *World) Add(t *Type, x, y float64) (*Particle, error) {
	if _, ok := w.groups[t.ID()]; !ok {
		return nil, fmt.Errorf("particle: unknown type id %d", t.ID())
	}
	p := &Particle{
		Pos:  r2.Vec{X: wrap(x, float64(w.Width)), Y: wrap(y, float64(w.Height))},
		Kind: t,
	}
	w.Particles = append(w.Particles, p)
	w.groups[t.ID()] = append(w.groups[t.ID()], p)
	return p, nil
}

// Group returns the particles of type id as force bodies.
func (w *World) Group(id int) []force.Body { return w.groups[id] }

// Integrate advances positions one step: friction damps the velocity, the
// velocity moves the particle, and the position wraps around the torus.
func (w *World) Integrate(dt, friction float64) {
	width, height := float64(w.Width), float64(w.Height)
	damp := 1 - friction*dt
	for _, p := range w.Particles {
		p.Vel.X *= damp
		p.Vel.Y *= damp
		p.Pos.X = wrap(p.Pos.X+p.Vel.X*dt, width)
		p.Pos.Y = wrap(p.Pos.Y+p.Vel.Y*dt, height)
	}
}

// Snapshot returns a height x width grid of type IDs, 0 for empty cells.
// When several particles share a cell the last one wins.
func (w *World) Snapshot() [][]int {
	grid := make([][]int, w.Height)
	cells := make([]int, w.Width*w.Height)
	for y := range grid {
		grid[y] = cells[y*w.Width : (y+1)*w.Width]
	}
	for _, p := range w.Particles {
		x, y := int(p.Pos.X), int(p.Pos.Y)
		grid[y%w.Height][x%w.Width] = p.Kind.ID()
	}
	return grid
}

// MeanSpeed is the average velocity magnitude over all particles.
func (w *World) MeanSpeed() float64 {
	if len(w.Particles) == 0 {
		return 0
	}
	var sum float64
	for _, p := range w.Particles {
		sum += r2.Norm(p.Vel)
	}
	return sum / float64(len(w.Particles))
}

// wrap maps v into [0, size).
func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	if v >= size { // -tiny + size rounds up to size
		v = 0
	}
	return v
}
