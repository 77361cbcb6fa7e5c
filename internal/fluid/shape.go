package fluid

import (
	"fmt"
	"image"
)

// aspect is the physical width of the domain; the height is 1.
const aspect = 4.0 / 3.0

// Shape is the simulation resolution. Axis 0 runs horizontally across NX
// cells, axis 1 vertically across NY cells. Cells are stored column by
// column: the flat index of (i, j) is i*NY + j.
type Shape struct {
	NX, NY int
}

// ShapeFor derives the simulation resolution from a camera size and a
// resolution multiplier.
func ShapeFor(cam image.Point, multiplier float64) (Shape, error) {
	if cam.X <= 0 || cam.Y <= 0 {
		return Shape{}, fmt.Errorf("%w: camera size %dx%d", ErrInvalidConfig, cam.X, cam.Y)
	}
	if multiplier <= 0 {
		return Shape{}, fmt.Errorf("%w: resolution multiplier %g", ErrInvalidConfig, multiplier)
	}
	s := Shape{NX: int(float64(cam.X) * multiplier), NY: int(float64(cam.Y) * multiplier)}
	if s.NX < 3 || s.NY < 3 {
		return Shape{}, fmt.Errorf("%w: grid %dx%d is too small", ErrInvalidConfig, s.NX, s.NY)
	}
	return s, nil
}

// Len returns the number of cells.
func (s Shape) Len() int { return s.NX * s.NY }

// Index returns the flat index of cell (i, j).
func (s Shape) Index(i, j int) int { return i*s.NY + j }

// Dim returns the number of cells along axis.
func (s Shape) Dim(axis int) int {
	if axis == 0 {
		return s.NX
	}
	return s.NY
}

// Rect returns the grid as an image rectangle, x along axis 0.
func (s Shape) Rect() image.Rectangle { return image.Rect(0, 0, s.NX, s.NY) }

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.NX, s.NY) }

// Spacing is the physical size of one cell along each axis.
type Spacing [2]float64

// SpacingFor returns the discretisation step for shape: the domain spans
// 4/3 along axis 0 and 1 along axis 1.
func SpacingFor(s Shape) Spacing {
	return Spacing{aspect / float64(s.NX), 1 / float64(s.NY)}
}

func checkShape(what string, got, want Shape) error {
	if got != want {
		return fmt.Errorf("%w: %s is %s, grid is %s", ErrShapeMismatch, what, got, want)
	}
	return nil
}
