package camera

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// Still serves one image, scaled to the requested size, as every frame.
type Still struct {
	frame *image.RGBA
	mask  *image.Gray
}

// NewStill loads path and, if maskPath is set, a mask image. Without a mask
// file, pixels brighter than threshold are foreground.
func NewStill(path, maskPath string, size image.Point, threshold uint8) (*Still, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	src, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, size.X, size.Y)
	s := &Still{frame: image.NewRGBA(rect), mask: image.NewGray(rect)}
	draw.CatmullRom.Scale(s.frame, rect, src, src.Bounds(), draw.Src, nil)

	if maskPath != "" {
		m, err := decodeFile(maskPath)
		if err != nil {
			return nil, err
		}
		draw.ApproxBiLinear.Scale(s.mask, rect, m, m.Bounds(), draw.Src, nil)
		return s, nil
	}
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			l := color.GrayModel.Convert(s.frame.RGBAAt(x, y)).(color.Gray).Y
			if l > threshold {
				s.mask.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return s, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func (s *Still) Size() image.Point  { return s.frame.Bounds().Size() }
func (s *Still) Frame() *image.RGBA { return s.frame }
func (s *Still) Mask() *image.Gray  { return s.mask }

// Advance does nothing; a still never changes.
func (s *Still) Advance(float64) {}
