package fluid

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

var camColor = color.RGBA{R: 10, G: 20, B: 30, A: 255}

func TestRenderSmokeTransparentIsCameraFrame(t *testing.T) {
	s, d, _ := newTestSim(t, 64, 48, 0.5)
	cam := newStaticCamera(64, 48, camColor)
	for i := range d.color.R {
		d.color.R[i], d.color.G[i], d.color.B[i] = 0.9, 0.4, 0.1
	}

	out, err := s.Render(cam, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := out.Bounds().Size(); got != image.Pt(64, 48) {
		t.Fatalf("output size %v, want 64x48", got)
	}
	if !bytes.Equal(out.Pix, cam.frame.Pix) {
		t.Fatalf("zero alpha should reproduce the camera frame")
	}
}

func TestRenderSmokeOpaqueIsSmokeColour(t *testing.T) {
	s, d, _ := newTestSim(t, 64, 48, 0.5)
	cam := newStaticCamera(64, 48, camColor)
	for i := range d.color.R {
		d.color.R[i], d.color.G[i], d.color.B[i] = 1, 0, 1
		d.alpha.Data[i] = 1
	}

	out, err := s.Render(cam, RenderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if c := out.RGBAAt(x, y); c != (color.RGBA{R: 255, G: 0, B: 255, A: 255}) {
				t.Fatalf("(%d,%d) = %v, want 255*colour", x, y, c)
			}
		}
	}
}

func TestRenderSmokeHalfAlpha(t *testing.T) {
	s, d, _ := newTestSim(t, 64, 48, 0.5)
	cam := newStaticCamera(64, 48, camColor)
	d.alpha.Fill(0.5)

	out, err := s.Render(cam, RenderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	c := out.RGBAAt(31, 17)
	if !near(c.R, 5) || !near(c.G, 10) || !near(c.B, 15) {
		t.Fatalf("half alpha over black smoke = %v, want about (5,10,15)", c)
	}
}

func TestRenderSmokeMaskInset(t *testing.T) {
	s, _, _ := newTestSim(t, 64, 48, 0.5)
	cam := newStaticCamera(64, 48, camColor)
	for i := range cam.mask.Pix {
		cam.mask.Pix[i] = 200
	}

	out, err := s.Render(cam, RenderOptions{ShowMask: true})
	if err != nil {
		t.Fatal(err)
	}
	if c := out.RGBAAt(5, 5); c.R != 200 || c.G != 200 || c.B != 200 {
		t.Fatalf("inset pixel = %v, want grey 200", c)
	}
	if c := out.RGBAAt(16, 12); c != camColor {
		t.Fatalf("pixel outside the inset = %v, want camera colour", c)
	}
}

func TestRenderVelocity(t *testing.T) {
	s, _, _ := newTestSim(t, 64, 48, 0.5)
	s.SetMode(ModeVelocity)
	cam := newStaticCamera(64, 48, camColor)
	for y := 0; y < 48; y++ {
		for x := 32; x < 64; x++ {
			cam.mask.SetGray(x, y, color.Gray{Y: 200})
		}
	}

	out, err := s.Render(cam, RenderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if c := out.RGBAAt(40, 20); c != (color.RGBA{A: 255}) {
		t.Fatalf("still fluid should render black, got %v", c)
	}

	out, err = s.Render(cam, RenderOptions{ShowMask: true})
	if err != nil {
		t.Fatal(err)
	}
	if c := out.RGBAAt(40, 20); c.R != 50 || c.G != 50 || c.B != 50 {
		t.Fatalf("masked pixel = %v, want mask/4 added", c)
	}
	if c := out.RGBAAt(10, 20); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Fatalf("unmasked pixel = %v, want velocity view", c)
	}
}

func TestRenderVelocityWalls(t *testing.T) {
	s, _, _ := newTestSim(t, 64, 48, 0.5)
	s.SetMode(ModeVelocity)
	n := s.Shape()
	occ := NewMask(n)
	for i := 8; i < 20; i++ {
		for j := 6; j < 18; j++ {
			occ.Set(i, j, true)
		}
	}
	if err := s.SetBoundary(occ, NewVectorField(n), DirectionPosX); err != nil {
		t.Fatal(err)
	}
	cam := newStaticCamera(64, 48, camColor)

	out, err := s.Render(cam, RenderOptions{MaskVelocity: true})
	if err != nil {
		t.Fatal(err)
	}
	c := out.RGBAAt(28, 24)
	if !near(c.R, wallTint.R) || !near(c.G, wallTint.G) || !near(c.B, wallTint.B) {
		t.Fatalf("wall pixel = %v, want %v", c, wallTint)
	}
}

func TestRenderRejectsWrongCamera(t *testing.T) {
	s, _, _ := newTestSim(t, 64, 48, 0.5)
	if _, err := s.Render(newStaticCamera(32, 24, camColor), RenderOptions{}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("got %v, want ErrShapeMismatch", err)
	}
	cam := newStaticCamera(64, 48, camColor)
	cam.mask = image.NewGray(image.Rect(0, 0, 10, 10))
	if _, err := s.Render(cam, RenderOptions{ShowMask: true}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("small mask: got %v, want ErrShapeMismatch", err)
	}
}
