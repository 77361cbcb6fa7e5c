package fluid

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ScalarField is one float value per cell.
type ScalarField struct {
	Shape Shape
	Data  []float64
}

// NewScalarField allocates a zeroed field.
func NewScalarField(s Shape) *ScalarField {
	return &ScalarField{Shape: s, Data: make([]float64, s.Len())}
}

func (f *ScalarField) At(i, j int) float64     { return f.Data[f.Shape.Index(i, j)] }
func (f *ScalarField) Set(i, j int, v float64) { f.Data[f.Shape.Index(i, j)] = v }

// Fill sets every cell to v.
func (f *ScalarField) Fill(v float64) { fill(f.Data, v) }

// Dense returns an NX×NY matrix view sharing the field's storage.
func (f *ScalarField) Dense() *mat.Dense {
	return mat.NewDense(f.Shape.NX, f.Shape.NY, f.Data)
}

// Sum returns the total over all cells.
func (f *ScalarField) Sum() float64 { return mat.Sum(f.Dense()) }

// VectorField holds the two velocity components: U along axis 0 and V along
// axis 1.
type VectorField struct {
	Shape Shape
	U, V  []float64
}

// NewVectorField allocates a zeroed field.
func NewVectorField(s Shape) *VectorField {
	return &VectorField{
		Shape: s,
		U:     make([]float64, s.Len()),
		V:     make([]float64, s.Len()),
	}
}

// Component returns the storage for axis 0 (U) or axis 1 (V).
func (f *VectorField) Component(axis int) []float64 {
	if axis == 0 {
		return f.U
	}
	return f.V
}

// Dense returns a matrix view of one component sharing the field's storage.
func (f *VectorField) Dense(axis int) *mat.Dense {
	return mat.NewDense(f.Shape.NX, f.Shape.NY, f.Component(axis))
}

// Zero clears both components.
func (f *VectorField) Zero() {
	fill(f.U, 0)
	fill(f.V, 0)
}

// CopyFrom overwrites f with src. Both fields must share a shape.
func (f *VectorField) CopyFrom(src *VectorField) {
	copy(f.U, src.U)
	copy(f.V, src.V)
}

// MaxSpeed returns the largest velocity magnitude in the field.
func (f *VectorField) MaxSpeed() float64 {
	u, v := f.Dense(0), f.Dense(1)
	var uu, vv mat.Dense
	uu.MulElem(u, u)
	vv.MulElem(v, v)
	uu.Add(&uu, &vv)
	return math.Sqrt(mat.Max(&uu))
}

// ColorField is an RGB image at simulation resolution, channels in [0,1].
type ColorField struct {
	Shape   Shape
	R, G, B []float64
}

// NewColorField allocates a black field.
func NewColorField(s Shape) *ColorField {
	return &ColorField{
		Shape: s,
		R:     make([]float64, s.Len()),
		G:     make([]float64, s.Len()),
		B:     make([]float64, s.Len()),
	}
}

// Mask is one flag per cell.
type Mask struct {
	Shape Shape
	Cells []bool
}

// NewMask allocates an all-false mask.
func NewMask(s Shape) *Mask {
	return &Mask{Shape: s, Cells: make([]bool, s.Len())}
}

func (m *Mask) At(i, j int) bool     { return m.Cells[m.Shape.Index(i, j)] }
func (m *Mask) Set(i, j int, v bool) { m.Cells[m.Shape.Index(i, j)] = v }

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0
	for _, c := range m.Cells {
		if c {
			n++
		}
	}
	return n
}

func fill[T any](slice []T, val T) {
	for i := range slice {
		slice[i] = val
	}
}
