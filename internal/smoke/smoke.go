// Package smoke implements fluid.DensityField as a concentration grid plus
// three dye grids. Dye is stored premultiplied by concentration so the
// solver can advect all four grids linearly and the colour survives.
package smoke

import (
	"math"

	"github.com/mazznoer/colorgrad"

	"smokecam/internal/fluid"
)

const (
	// DefaultMaxConcentration caps the smoke in any one cell.
	DefaultMaxConcentration = 1.0
	// DefaultOpacity scales concentration into compositing alpha.
	DefaultOpacity = 0.85

	minConcentration = 1e-6
)

// Field is a coloured smoke density. It is not safe for concurrent use.
type Field struct {
	shape   fluid.Shape
	conc    *fluid.ScalarField
	dye     [3]*fluid.ScalarField
	color   *fluid.ColorField
	alpha   *fluid.ScalarField
	palette colorgrad.Gradient

	maxConc float64
	opacity float64
}

// Option configures a Field.
type Option func(*Field)

// WithPalette colours streams from g, sampled evenly across [0,1].
func WithPalette(g colorgrad.Gradient) Option {
	return func(f *Field) { f.palette = g }
}

// WithMaxConcentration sets the per-cell cap applied when smoke is added.
func WithMaxConcentration(c float64) Option {
	return func(f *Field) {
		if c > 0 {
			f.maxConc = c
		}
	}
}

// WithOpacity sets the alpha reached at unit concentration.
func WithOpacity(o float64) Option {
	return func(f *Field) { f.opacity = math.Max(0, math.Min(o, 1)) }
}

// New returns an empty field on shape.
func New(shape fluid.Shape, opts ...Option) *Field {
	f := &Field{
		shape:   shape,
		conc:    fluid.NewScalarField(shape),
		color:   fluid.NewColorField(shape),
		alpha:   fluid.NewScalarField(shape),
		palette: colorgrad.Rainbow(),
		maxConc: DefaultMaxConcentration,
		opacity: DefaultOpacity,
	}
	for k := range f.dye {
		f.dye[k] = fluid.NewScalarField(shape)
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Factory adapts New to the constructor fluid.New expects.
func Factory(opts ...Option) func(fluid.Shape) fluid.DensityField {
	return func(s fluid.Shape) fluid.DensityField { return New(s, opts...) }
}

// AddDensity seeds streams evenly spaced stripes of smoke across the
// upstream inflow band: the first band cells along the flow axis when the
// flow runs positive, the last band cells when it runs negative. Stripe k
// takes its colour from the palette at (k+0.5)/streams.
func (f *Field) AddDensity(band int, dir fluid.Direction, streams int, amount float64) {
	if band <= 0 || streams <= 0 || amount <= 0 || !dir.Valid() {
		return
	}
	axis := dir.Axis()
	along, across := f.shape.Dim(axis), f.shape.Dim(1-axis)
	band = min(band, along)
	start := 0
	if dir.Sign() < 0 {
		start = along - band
	}
	for k := 0; k < streams; k++ {
		lo, hi := stripe(k, streams, across)
		col := f.streamColor(k, streams)
		for a := start; a < start+band; a++ {
			for c := lo; c < hi; c++ {
				i, j := a, c
				if axis == 1 {
					i, j = c, a
				}
				f.inject(f.shape.Index(i, j), amount, col)
			}
		}
	}
}

// stripe returns the cross-axis cell range [lo, hi) of stream k. Stripes
// cover half of their slot and are at least one cell wide.
func stripe(k, streams, n int) (int, int) {
	slot := float64(n) / float64(streams)
	center := (float64(k) + 0.5) * slot
	half := math.Max(slot/4, 0.5)
	lo := int(math.Floor(center - half))
	hi := int(math.Ceil(center + half))
	return max(lo, 0), min(max(hi, lo+1), n)
}

func (f *Field) streamColor(k, streams int) [3]float64 {
	r, g, b, _ := f.palette.At((float64(k) + 0.5) / float64(streams)).RGBA()
	return [3]float64{float64(r) / 0xffff, float64(g) / 0xffff, float64(b) / 0xffff}
}

func (f *Field) inject(idx int, amount float64, col [3]float64) {
	old := f.conc.Data[idx]
	next := math.Min(old+amount, f.maxConc)
	added := next - old
	if added <= 0 {
		return
	}
	f.conc.Data[idx] = next
	for ch := range f.dye {
		f.dye[ch].Data[idx] += added * col[ch]
	}
}

// Reset removes all smoke.
func (f *Field) Reset() {
	f.conc.Fill(0)
	for _, d := range f.dye {
		d.Fill(0)
	}
}

// Field returns the concentration followed by the three dye grids.
func (f *Field) Field() []*fluid.ScalarField {
	return []*fluid.ScalarField{f.conc, f.dye[0], f.dye[1], f.dye[2]}
}

// Concentration returns the live concentration grid.
func (f *Field) Concentration() *fluid.ScalarField { return f.conc }

// Mass returns the total concentration.
func (f *Field) Mass() float64 { return f.conc.Sum() }

// Render returns the smoke colour per cell in [0,1]. Empty cells are black.
// The result is rebuilt on every call.
func (f *Field) Render() *fluid.ColorField {
	out := [3][]float64{f.color.R, f.color.G, f.color.B}
	for idx, c := range f.conc.Data {
		for ch := range out {
			v := 0.0
			if c > minConcentration {
				v = math.Max(0, math.Min(f.dye[ch].Data[idx]/c, 1))
			}
			out[ch][idx] = v
		}
	}
	return f.color
}

// Alpha returns min(concentration, 1) scaled by the opacity.
func (f *Field) Alpha() *fluid.ScalarField {
	for idx, c := range f.conc.Data {
		f.alpha.Data[idx] = math.Max(0, math.Min(c, 1)) * f.opacity
	}
	return f.alpha
}
