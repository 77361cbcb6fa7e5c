package camera

import (
	"image"
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

const (
	noiseAlpha  = 2.0
	noiseBeta   = 2.0
	noiseOctave = 3
	// noiseCell is the number of frame pixels per noise sample.
	noiseCell = 8
	// noiseScale converts noise samples to noise space.
	noiseScale = 0.08
	// noiseDrift is how fast the background evolves, in noise units per second.
	noiseDrift = 0.25
)

// Synthetic renders a drifting Perlin noise backdrop with a round
// silhouette wandering across it. The silhouette is the mask.
type Synthetic struct {
	size  image.Point
	noise *perlin.Perlin
	t     float64

	coarse *image.RGBA
	frame  *image.RGBA
	mask   *image.Gray
}

// NewSynthetic builds a scene of the given size. The same seed always
// produces the same frames.
func NewSynthetic(size image.Point, seed int64) (*Synthetic, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	cw, ch := max(size.X/noiseCell, 2), max(size.Y/noiseCell, 2)
	s := &Synthetic{
		size:   size,
		noise:  perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed),
		coarse: image.NewRGBA(image.Rect(0, 0, cw, ch)),
		frame:  image.NewRGBA(image.Rect(0, 0, size.X, size.Y)),
		mask:   image.NewGray(image.Rect(0, 0, size.X, size.Y)),
	}
	s.render()
	return s, nil
}

func (s *Synthetic) Size() image.Point  { return s.size }
func (s *Synthetic) Frame() *image.RGBA { return s.frame }
func (s *Synthetic) Mask() *image.Gray  { return s.mask }

// Time returns the scene clock in seconds.
func (s *Synthetic) Time() float64 { return s.t }

// Advance moves the scene forward by dt seconds and redraws it.
func (s *Synthetic) Advance(dt float64) {
	s.t += dt
	s.render()
}

// Silhouette returns the centre and radius of the wandering disc at the
// current time.
func (s *Synthetic) Silhouette() (image.Point, int) {
	w, h := float64(s.size.X), float64(s.size.Y)
	cx := w * (0.5 + 0.3*math.Sin(0.7*s.t))
	cy := h * (0.5 + 0.2*math.Sin(1.1*s.t+0.5))
	r := 0.18 * math.Min(w, h)
	return image.Pt(int(cx), int(cy)), int(math.Max(r, 1))
}

func (s *Synthetic) render() {
	b := s.coarse.Bounds()
	z := s.t * noiseDrift
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			n := s.noise.Noise3D(float64(x)*noiseScale*noiseCell/4, float64(y)*noiseScale*noiseCell/4, z)
			n = math.Max(-1, math.Min(n, 1))
			r, g, bl := colorful.Hsv(210+50*n, 0.45, 0.45+0.25*n).RGB255()
			s.coarse.SetRGBA(x, y, color.RGBA{R: r, G: g, B: bl, A: 0xff})
		}
	}
	draw.BiLinear.Scale(s.frame, s.frame.Bounds(), s.coarse, b, draw.Src, nil)

	c, r := s.Silhouette()
	r2 := r * r
	body := color.RGBA{R: 70, G: 52, B: 44, A: 0xff}
	for y := 0; y < s.size.Y; y++ {
		dy := y - c.Y
		for x := 0; x < s.size.X; x++ {
			dx := x - c.X
			if dx*dx+dy*dy <= r2 {
				s.mask.SetGray(x, y, color.Gray{Y: 0xff})
				s.frame.SetRGBA(x, y, body)
			} else {
				s.mask.SetGray(x, y, color.Gray{})
			}
		}
	}
}
