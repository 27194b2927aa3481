package force

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Delta returns the signed shortest displacement from src to dst on a
// circular axis of length size. A positive result means dst is ahead of src
// once wrapping is taken into account. When both directions are equally
// long the forward (positive) one wins.
//
// size must be positive; Delta panics otherwise.
func Delta(src, dst, size float64) float64 {
	if size <= 0 {
		panic(fmt.Sprintf("force: non-positive axis length %g", size))
	}

	var increasing, decreasing float64
	if dst < src {
		increasing = (size + dst) - src // forward wraps through the boundary
		decreasing = src - dst
	} else {
		increasing = dst - src
		decreasing = (size + src) - dst // backward wraps through the boundary
	}

	if increasing <= decreasing {
		return increasing
	}
	return -decreasing
}

// Displacement applies Delta on both axes, from p to q.
func Displacement(p, q r2.Vec, width, height float64) r2.Vec {
	return r2.Vec{
		X: Delta(p.X, q.X, width),
		Y: Delta(p.Y, q.Y, height),
	}
}

// Distance is the toroidal distance between p and q.
func Distance(p, q r2.Vec, width, height float64) float64 {
	return r2.Norm(Displacement(p, q, width, height))
}
