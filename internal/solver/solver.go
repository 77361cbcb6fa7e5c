// Package solver advances the flow held in fluid.Grids. CPU runs a
// stable-fluids step in float64 across all cores; OpenCL runs the same step
// on a GPU when the binary is built with the opencl tag.
package solver

import (
	"errors"
	"fmt"
	"math"

	"smokecam/internal/fluid"
)

// ErrDiverged reports a step that produced a non-finite velocity.
var ErrDiverged = errors.New("solver: velocity diverged")

// Config tunes a solver step.
type Config struct {
	// Iterations is the number of Jacobi sweeps used by the pressure and
	// viscosity solves.
	Iterations int
	// Viscosity is the kinematic viscosity. Zero skips diffusion.
	Viscosity float64
	// Dissipation is the rate at which carried scalars fade, per second.
	Dissipation float64
}

// DefaultConfig is used for fields left at zero by callers.
var DefaultConfig = Config{
	Iterations:  30,
	Viscosity:   0,
	Dissipation: 0.05,
}

func (c Config) withDefaults() Config {
	if c.Iterations <= 0 {
		c.Iterations = DefaultConfig.Iterations
	}
	return c
}

// checkGrids verifies that every grid in g has the simulation shape.
func checkGrids(g fluid.Grids) error {
	if g.Velocity == nil || g.Boundary == nil {
		return fmt.Errorf("%w: missing velocity or boundary", fluid.ErrShapeMismatch)
	}
	if g.Velocity.Shape != g.Shape {
		return fmt.Errorf("%w: velocity is %s, grid is %s", fluid.ErrShapeMismatch, g.Velocity.Shape, g.Shape)
	}
	if bs := g.Boundary.Solid().Shape; bs != g.Shape {
		return fmt.Errorf("%w: boundary is %s, grid is %s", fluid.ErrShapeMismatch, bs, g.Shape)
	}
	for k, d := range g.Density {
		if d.Shape != g.Shape {
			return fmt.Errorf("%w: density %d is %s, grid is %s", fluid.ErrShapeMismatch, k, d.Shape, g.Shape)
		}
	}
	return nil
}

func checkFinite(v *fluid.VectorField) error {
	for i := range v.U {
		if math.IsNaN(v.U[i]) || math.IsInf(v.U[i], 0) || math.IsNaN(v.V[i]) || math.IsInf(v.V[i], 0) {
			return fmt.Errorf("%w at cell %d", ErrDiverged, i)
		}
	}
	return nil
}

// decay returns the factor a carried scalar is scaled by over dt.
func decay(rate, dt float64) float64 {
	if rate <= 0 {
		return 1
	}
	return math.Exp(-rate * dt)
}

// clampIndex constrains v to lie within the inclusive [lo, hi] range.
func clampIndex(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
