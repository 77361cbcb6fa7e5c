package fluid

import (
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV is a byte-per-channel HSV image of the velocity field. Hue uses the
// half-degree convention, 0..180 covering the full wheel.
type HSV struct {
	Shape   Shape
	H, S, V []uint8
}

func newHSV(s Shape) *HSV {
	h := &HSV{
		Shape: s,
		H:     make([]uint8, s.Len()),
		S:     make([]uint8, s.Len()),
		V:     make([]uint8, s.Len()),
	}
	fill(h.S, 255)
	return h
}

// VelocityHSV encodes the current velocity as hue (direction) and value
// (magnitude raised to power). Magnitudes whose value exceeds 255 wrap
// modulo 256. The returned buffer is owned by the Sim and overwritten by
// the next call.
func (s *Sim) VelocityHSV(power float64) *HSV {
	h := s.hsv
	for idx := range h.H {
		u, v := s.v.U[idx], s.v.V[idx]
		h.H[idx] = wrap8(180 * (math.Atan2(-u, -v)/(2*math.Pi) + 0.5))
		h.V[idx] = wrap8(255 * math.Pow(u*u+v*v, power))
	}
	return h
}

// wrap8 truncates x and keeps the low eight bits. Non-finite values give 0.
func wrap8(x float64) uint8 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return uint8(int64(math.Mod(x, 256)))
}

// RGBA converts the image into dst, which must cover the grid.
func (h *HSV) RGBA(dst *image.RGBA) {
	n := h.Shape
	for i := 0; i < n.NX; i++ {
		for j := 0; j < n.NY; j++ {
			idx := n.Index(i, j)
			hue := math.Mod(float64(h.H[idx])*2, 360)
			c := colorful.Hsv(hue, float64(h.S[idx])/255, float64(h.V[idx])/255)
			r, g, b := c.RGB255()
			dst.SetRGBA(i, j, color.RGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
}
