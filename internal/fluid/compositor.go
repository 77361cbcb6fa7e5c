package fluid

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// wallTint is the colour solid cells are drawn with when RenderOptions
// asks for them.
var wallTint = color.RGBA{R: 30, G: 40, B: 80, A: 255}

// RenderOptions selects optional overlays for Render.
type RenderOptions struct {
	// MaskVelocity draws solid boundary cells over the velocity view.
	MaskVelocity bool
	// ShowMask overlays the camera mask: a quarter-size inset in smoke mode,
	// a darkened blend over masked pixels in velocity mode.
	ShowMask bool
}

// compositor owns every buffer used to turn simulation state into a camera
// sized frame. None of them carry meaning between frames.
type compositor struct {
	cam image.Point

	colorSim *image.RGBA64
	alphaSim *image.Gray16
	colorCam *image.RGBA64
	alphaCam *image.Gray16
	velSim   *image.RGBA
	inset    *image.Gray
	output   *image.RGBA
}

func newCompositor(s Shape, cam image.Point) *compositor {
	camRect := image.Rect(0, 0, cam.X, cam.Y)
	return &compositor{
		cam:      cam,
		colorSim: image.NewRGBA64(s.Rect()),
		alphaSim: image.NewGray16(s.Rect()),
		colorCam: image.NewRGBA64(camRect),
		alphaCam: image.NewGray16(camRect),
		velSim:   image.NewRGBA(s.Rect()),
		inset:    image.NewGray(image.Rect(0, 0, cam.X/4, cam.Y/4)),
		output:   image.NewRGBA(camRect),
	}
}

func (c *compositor) checkCamera(cam Camera, needMask bool) error {
	if got := cam.Size(); got != c.cam {
		return fmt.Errorf("%w: camera is %v, sim was built for %v", ErrShapeMismatch, got, c.cam)
	}
	if got := cam.Frame().Bounds().Size(); got != c.cam {
		return fmt.Errorf("%w: camera frame is %v, want %v", ErrShapeMismatch, got, c.cam)
	}
	if needMask {
		m := cam.Mask()
		if m == nil {
			return fmt.Errorf("%w: camera has no mask", ErrShapeMismatch)
		}
		if got := m.Bounds().Size(); got != c.cam {
			return fmt.Errorf("%w: camera mask is %v, want %v", ErrShapeMismatch, got, c.cam)
		}
	}
	return nil
}

// smoke blends the density colour over the camera frame using the density
// alpha: out = 255*colour*alpha + frame*(1-alpha).
func (c *compositor) smoke(col *ColorField, alpha *ScalarField, frame *image.RGBA) {
	n := col.Shape
	for i := 0; i < n.NX; i++ {
		for j := 0; j < n.NY; j++ {
			idx := n.Index(i, j)
			c.colorSim.SetRGBA64(i, j, color.RGBA64{
				R: unit16(col.R[idx]),
				G: unit16(col.G[idx]),
				B: unit16(col.B[idx]),
				A: 0xffff,
			})
			c.alphaSim.SetGray16(i, j, color.Gray16{Y: unit16(alpha.Data[idx])})
		}
	}
	draw.BiLinear.Scale(c.colorCam, c.colorCam.Bounds(), c.colorSim, c.colorSim.Bounds(), draw.Src, nil)
	draw.BiLinear.Scale(c.alphaCam, c.alphaCam.Bounds(), c.alphaSim, c.alphaSim.Bounds(), draw.Src, nil)

	fmin := frame.Bounds().Min
	for y := 0; y < c.cam.Y; y++ {
		for x := 0; x < c.cam.X; x++ {
			a := float64(c.alphaCam.Gray16At(x, y).Y) / 0xffff
			sc := c.colorCam.RGBA64At(x, y)
			fo := frame.PixOffset(fmin.X+x, fmin.Y+y)
			oo := c.output.PixOffset(x, y)
			c.output.Pix[oo+0] = blend(sc.R, frame.Pix[fo+0], a)
			c.output.Pix[oo+1] = blend(sc.G, frame.Pix[fo+1], a)
			c.output.Pix[oo+2] = blend(sc.B, frame.Pix[fo+2], a)
			c.output.Pix[oo+3] = 0xff
		}
	}
}

// insetMask pastes the camera mask, scaled to a quarter of each dimension,
// over the top-left corner of the output.
func (c *compositor) insetMask(mask *image.Gray) {
	r := c.inset.Bounds()
	if r.Empty() {
		return
	}
	draw.BiLinear.Scale(c.inset, r, mask, mask.Bounds(), draw.Src, nil)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			g := c.inset.GrayAt(x, y).Y
			c.output.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 0xff})
		}
	}
}

// velocity resamples the HSV view of the velocity field to the output.
func (c *compositor) velocity(h *HSV, walls *Mask) {
	h.RGBA(c.velSim)
	if walls != nil {
		n := walls.Shape
		for i := 0; i < n.NX; i++ {
			for j := 0; j < n.NY; j++ {
				if walls.At(i, j) {
					c.velSim.SetRGBA(i, j, wallTint)
				}
			}
		}
	}
	draw.BiLinear.Scale(c.output, c.output.Bounds(), c.velSim, c.velSim.Bounds(), draw.Src, nil)
}

// addMask brightens every masked pixel by a quarter of the mask value,
// saturating at 255. Unmasked pixels keep the velocity view.
func (c *compositor) addMask(mask *image.Gray) {
	mmin := mask.Bounds().Min
	for y := 0; y < c.cam.Y; y++ {
		for x := 0; x < c.cam.X; x++ {
			m := mask.GrayAt(mmin.X+x, mmin.Y+y).Y
			if m == 0 {
				continue
			}
			add := m / 4
			oo := c.output.PixOffset(x, y)
			for k := 0; k < 3; k++ {
				c.output.Pix[oo+k] = addSat(c.output.Pix[oo+k], add)
			}
		}
	}
}

func unit16(v float64) uint16 {
	return uint16(math.Round(clamp01(v) * 0xffff))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func blend(src uint16, dst uint8, a float64) uint8 {
	v := 255*(float64(src)/0xffff)*a + float64(dst)*(1-a)
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func addSat(a, b uint8) uint8 {
	if s := int(a) + int(b); s < 256 {
		return uint8(s)
	}
	return 255
}
