package fluid

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Boundary marks cells whose velocity is fixed from outside the solver:
// obstacles, containment walls, and any cell the caller pins. open is the
// cached complement of solid and is rebuilt by every method that writes
// solid.
type Boundary struct {
	solid *Mask
	open  *Mask
}

// NewBoundary returns a boundary with no solid cells.
func NewBoundary(s Shape) *Boundary {
	b := &Boundary{solid: NewMask(s), open: NewMask(s)}
	b.refresh()
	return b
}

// Solid returns the boundary mask. Callers must not modify it.
func (b *Boundary) Solid() *Mask { return b.solid }

// Open returns the complement of Solid. Callers must not modify it.
func (b *Boundary) Open() *Mask { return b.open }

// IsSolid reports whether (i, j) is fixed. Cells outside the grid count as
// solid.
func (b *Boundary) IsSolid(i, j int) bool {
	s := b.solid.Shape
	if i < 0 || i >= s.NX || j < 0 || j >= s.NY {
		return true
	}
	return b.solid.At(i, j)
}

// SetSolid marks or clears a single cell. The velocity there is left as is.
func (b *Boundary) SetSolid(i, j int, v bool) {
	idx := b.solid.Shape.Index(i, j)
	b.solid.Cells[idx] = v
	b.open.Cells[idx] = !v
}

// Clear removes every solid cell.
func (b *Boundary) Clear() {
	fill(b.solid.Cells, false)
	b.refresh()
}

func (b *Boundary) refresh() {
	for i, c := range b.solid.Cells {
		b.open.Cells[i] = !c
	}
}

// SetBoundary installs occupied as the boundary mask, imposes velocity on
// the occupied cells, and closes the two grid edges running parallel to the
// flow axis of dir with zero velocity so fluid cannot leave sideways.
// Directions sharing an axis place the same walls.
func (s *Sim) SetBoundary(occupied *Mask, velocity *VectorField, dir Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("set boundary: %w: %d", ErrInvalidDirection, int(dir))
	}
	if err := checkShape("occupancy mask", occupied.Shape, s.shape); err != nil {
		return err
	}
	if err := checkShape("boundary velocity", velocity.Shape, s.shape); err != nil {
		return err
	}
	if n := s.shape.Len(); len(occupied.Cells) != n || len(velocity.U) != n || len(velocity.V) != n {
		return fmt.Errorf("%w: boundary grids hold %d cells and %d/%d velocities, grid has %d",
			ErrShapeMismatch, len(occupied.Cells), len(velocity.U), len(velocity.V), n)
	}

	b := s.boundary
	copy(b.solid.Cells, occupied.Cells)
	for idx, c := range occupied.Cells {
		if c {
			s.v.U[idx] = velocity.U[idx]
			s.v.V[idx] = velocity.V[idx]
		}
	}

	n := s.shape
	if dir.Axis() == 0 {
		for i := 0; i < n.NX; i++ {
			s.pin(n.Index(i, 0))
			s.pin(n.Index(i, n.NY-1))
		}
	} else {
		for j := 0; j < n.NY; j++ {
			s.pin(n.Index(0, j))
			s.pin(n.Index(n.NX-1, j))
		}
	}

	b.refresh()
	return nil
}

// pin marks a cell solid with zero velocity.
func (s *Sim) pin(idx int) {
	s.boundary.solid.Cells[idx] = true
	s.v.U[idx] = 0
	s.v.V[idx] = 0
}

// OccupancyFromMask resamples a camera mask to the simulation grid and marks
// cells whose value exceeds threshold.
func OccupancyFromMask(mask *image.Gray, s Shape, threshold uint8) *Mask {
	small := image.NewGray(s.Rect())
	draw.ApproxBiLinear.Scale(small, small.Bounds(), mask, mask.Bounds(), draw.Src, nil)
	m := NewMask(s)
	for i := 0; i < s.NX; i++ {
		for j := 0; j < s.NY; j++ {
			m.Set(i, j, small.GrayAt(i, j).Y > threshold)
		}
	}
	return m
}
