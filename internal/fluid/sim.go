// Package fluid holds the simulation state behind the smoke mirror: the
// velocity grid, its boundary, inflow forcing, and the pipeline that turns
// the grid into a frame composited over the camera image. Numerical
// integration, smoke storage, and capture are supplied through the Solver,
// DensityField, and Camera interfaces.
package fluid

import (
	"fmt"
	"image"
)

// Mode selects what the Sim feeds and draws.
type Mode int

const (
	// ModeSmoke advects smoke and composites it over the camera frame.
	ModeSmoke Mode = iota
	// ModeVelocity evolves the flow alone and draws it as HSV.
	ModeVelocity
)

func (m Mode) String() string {
	switch m {
	case ModeSmoke:
		return "Smoke"
	case ModeVelocity:
		return "Velocity"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeSmoke {
		return ModeVelocity
	}
	return ModeSmoke
}

// Grids is the state a Solver advances in place.
type Grids struct {
	Shape    Shape
	Spacing  Spacing
	Velocity *VectorField
	Boundary *Boundary
	// Density lists the scalar grids carried by the flow. It is nil when
	// only the velocity evolves.
	Density []*ScalarField
}

// Solver integrates the flow for one time step.
type Solver interface {
	Step(dt float64, g Grids) error
}

// DensityField stores the smoke carried by the flow.
type DensityField interface {
	// AddDensity seeds smoke in the inflow band of the given width.
	AddDensity(band int, dir Direction, streams int, amount float64)
	Reset()
	// Field returns the grids the solver advects.
	Field() []*ScalarField
	Render() *ColorField
	Alpha() *ScalarField
}

// Camera supplies the frame the simulation is drawn over.
type Camera interface {
	Size() image.Point
	Frame() *image.RGBA
	// Mask is a single channel image the size of the frame; nonzero pixels
	// are foreground.
	Mask() *image.Gray
}

// DefaultHSVPower is the magnitude exponent used when drawing velocity. A
// square root would be linear in speed; the fourth root lifts slow flow.
const DefaultHSVPower = 0.25

// Option configures a Sim.
type Option func(*Sim)

// WithHSVPower sets the magnitude exponent used by Render in velocity mode.
func WithHSVPower(p float64) Option {
	return func(s *Sim) { s.hsvPower = p }
}

// Sim owns the simulation grids and sequences update and render. It is not
// safe for concurrent use.
type Sim struct {
	cam   image.Point
	shape Shape
	dx    Spacing
	mode  Mode

	v        *VectorField
	boundary *Boundary
	density  DensityField
	solver   Solver

	hsv      *HSV
	hsvPower float64
	comp     *compositor
}

// New builds a Sim for a camera of size cam. The grid is cam scaled by
// multiplier and never changes. newDensity is called once with that grid.
func New(cam image.Point, multiplier float64, solver Solver, newDensity func(Shape) DensityField, opts ...Option) (*Sim, error) {
	shape, err := ShapeFor(cam, multiplier)
	if err != nil {
		return nil, err
	}
	if solver == nil {
		return nil, fmt.Errorf("%w: nil solver", ErrInvalidConfig)
	}
	if newDensity == nil {
		return nil, fmt.Errorf("%w: nil density constructor", ErrInvalidConfig)
	}
	s := &Sim{
		cam:      cam,
		shape:    shape,
		dx:       SpacingFor(shape),
		mode:     ModeSmoke,
		v:        NewVectorField(shape),
		boundary: NewBoundary(shape),
		density:  newDensity(shape),
		solver:   solver,
		hsv:      newHSV(shape),
		hsvPower: DefaultHSVPower,
		comp:     newCompositor(shape, cam),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Sim) Shape() Shape            { return s.shape }
func (s *Sim) Spacing() Spacing        { return s.dx }
func (s *Sim) CameraSize() image.Point { return s.cam }
func (s *Sim) Mode() Mode              { return s.mode }

// SetMode switches between smoke and velocity display. No state is cleared.
func (s *Sim) SetMode(m Mode) { s.mode = m }

// Velocity returns the live velocity field. It is modified in place by
// Update, SetVelocity, SetBoundary, and Reset.
func (s *Sim) Velocity() *VectorField { return s.v }

func (s *Sim) Boundary() *Boundary   { return s.boundary }
func (s *Sim) Density() DensityField { return s.density }

// Reset zeroes the velocity and empties the density field. The boundary is
// kept.
func (s *Sim) Reset() {
	s.v.Zero()
	s.density.Reset()
}

// Update advances the flow by dt. Smoke is carried along only in smoke mode.
func (s *Sim) Update(dt float64) error {
	g := Grids{
		Shape:    s.shape,
		Spacing:  s.dx,
		Velocity: s.v,
		Boundary: s.boundary,
	}
	if s.mode == ModeSmoke {
		g.Density = s.density.Field()
	}
	if err := s.solver.Step(dt, g); err != nil {
		return fmt.Errorf("solver step: %w", err)
	}
	return nil
}

// Render draws the current state at camera resolution. The returned image is
// reused by the next call.
func (s *Sim) Render(cam Camera, opts RenderOptions) (*image.RGBA, error) {
	c := s.comp
	if err := c.checkCamera(cam, opts.ShowMask); err != nil {
		return nil, err
	}
	switch s.mode {
	case ModeSmoke:
		c.smoke(s.density.Render(), s.density.Alpha(), cam.Frame())
		if opts.ShowMask {
			c.insetMask(cam.Mask())
		}
	default:
		var walls *Mask
		if opts.MaskVelocity {
			walls = s.boundary.Solid()
		}
		c.velocity(s.VelocityHSV(s.hsvPower), walls)
		if opts.ShowMask {
			c.addMask(cam.Mask())
		}
	}
	return c.output, nil
}
