package fluid

import (
	"fmt"
	"math"
)

// maxBandWidth bounds BandWidth so the conversion to int never overflows.
const maxBandWidth = math.MaxInt32

// BandWidth returns the number of cells the inflow is applied across. It
// grows with the distance fluid travels in one step so advection samples
// from inside the forced band. The result is at least 1 and saturates at
// maxBandWidth.
func BandWidth(dt, speed, dx float64) int {
	f := math.Floor(dt * speed / dx)
	switch {
	case !(f > 0):
		return 1
	case f >= maxBandWidth-1:
		return maxBandWidth
	}
	return 1 + int(f)
}

// SetVelocity forces the inflow: within a band at both ends of the flow
// axis the axis component is set to sign*speed and the other component to
// zero. In smoke mode the band is also handed to the density field to seed
// streams of smoke. It returns the band width used.
func (s *Sim) SetVelocity(dt, speed float64, dir Direction, streams int, smoke float64) (int, error) {
	if !dir.Valid() {
		return 0, fmt.Errorf("set velocity: %w: %d", ErrInvalidDirection, int(dir))
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("set velocity: %w: dt %g speed %g", ErrInvalidConfig, dt, speed)
	}
	axis := dir.Axis()
	n := s.shape.Dim(axis)
	w := min(BandWidth(dt, speed, s.dx[axis]), n)

	along, across := s.v.Component(axis), s.v.Component(1-axis)
	value := dir.Sign() * speed
	for k := 0; k < w; k++ {
		s.forEachLine(axis, k, func(idx int) {
			along[idx] = value
			across[idx] = 0
		})
		s.forEachLine(axis, n-1-k, func(idx int) {
			along[idx] = value
			across[idx] = 0
		})
	}

	if s.mode == ModeSmoke {
		s.density.AddDensity(w, dir, streams, smoke)
	}
	return w, nil
}

// forEachLine visits every cell whose coordinate along axis equals k.
func (s *Sim) forEachLine(axis, k int, fn func(idx int)) {
	n := s.shape
	if axis == 0 {
		base := k * n.NY
		for j := 0; j < n.NY; j++ {
			fn(base + j)
		}
		return
	}
	for i := 0; i < n.NX; i++ {
		fn(i*n.NY + k)
	}
}
