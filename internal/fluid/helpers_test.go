package fluid

import (
	"image"
	"image/color"
	"testing"
)

type addCall struct {
	band    int
	dir     Direction
	streams int
	amount  float64
}

// fakeDensity is a DensityField whose render buffers tests set directly.
type fakeDensity struct {
	conc   *ScalarField
	color  *ColorField
	alpha  *ScalarField
	adds   []addCall
	resets int
}

func newFakeDensity(s Shape) *fakeDensity {
	return &fakeDensity{
		conc:  NewScalarField(s),
		color: NewColorField(s),
		alpha: NewScalarField(s),
	}
}

func (d *fakeDensity) AddDensity(band int, dir Direction, streams int, amount float64) {
	d.adds = append(d.adds, addCall{band, dir, streams, amount})
	d.conc.Data[0] += amount
}

func (d *fakeDensity) Reset() {
	d.resets++
	d.conc.Fill(0)
}

func (d *fakeDensity) Field() []*ScalarField { return []*ScalarField{d.conc} }
func (d *fakeDensity) Render() *ColorField   { return d.color }
func (d *fakeDensity) Alpha() *ScalarField   { return d.alpha }

// recordingSolver remembers what each Step received.
type recordingSolver struct {
	calls   int
	dt      float64
	density []*ScalarField
	err     error
}

func (r *recordingSolver) Step(dt float64, g Grids) error {
	r.calls++
	r.dt = dt
	r.density = g.Density
	return r.err
}

type staticCamera struct {
	frame *image.RGBA
	mask  *image.Gray
}

func newStaticCamera(w, h int, c color.RGBA) *staticCamera {
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			frame.SetRGBA(x, y, c)
		}
	}
	return &staticCamera{frame: frame, mask: image.NewGray(frame.Bounds())}
}

func (c *staticCamera) Size() image.Point  { return c.frame.Bounds().Size() }
func (c *staticCamera) Frame() *image.RGBA { return c.frame }
func (c *staticCamera) Mask() *image.Gray  { return c.mask }

// newTestSim builds a Sim with a fake density and a recording solver.
func newTestSim(t *testing.T, w, h int, multiplier float64) (*Sim, *fakeDensity, *recordingSolver) {
	t.Helper()
	var d *fakeDensity
	solver := &recordingSolver{}
	s, err := New(image.Pt(w, h), multiplier, solver, func(shape Shape) DensityField {
		d = newFakeDensity(shape)
		return d
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, d, solver
}

func near(a, b uint8) bool {
	if a > b {
		return a-b <= 1
	}
	return b-a <= 1
}
