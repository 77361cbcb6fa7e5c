package record

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestRecorderWritesAVI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.avi")
	r, err := Create(path, image.Pt(64, 48), 25, 0)
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 3; k++ {
		if err := r.AddFrame(solid(64, 48, color.RGBA{R: uint8(40 * k), G: 90, B: 200, A: 255}), "frame"); err != nil {
			t.Fatalf("AddFrame %d: %v", k, err)
		}
	}
	if r.Frames() != 3 || r.Path() != path {
		t.Fatalf("frames=%d path=%s", r.Frames(), r.Path())
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "AVI " {
		t.Fatalf("not an AVI file: % x", data[:min(len(data), 12)])
	}
	if n := bytes.Count(data, []byte("00dc")); n < 3 {
		t.Fatalf("found %d video chunks, want at least 3", n)
	}
}

func TestRecorderRejectsWrongSize(t *testing.T) {
	r, err := Create(filepath.Join(t.TempDir(), "out.avi"), image.Pt(32, 24), 10, 50)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.AddFrame(solid(16, 16, color.RGBA{A: 255}), ""); err == nil {
		t.Fatalf("wrong frame size accepted")
	}
}

func TestCreateValidates(t *testing.T) {
	if _, err := Create(filepath.Join(t.TempDir(), "x.avi"), image.Pt(0, 10), 25, 80); err == nil {
		t.Fatalf("zero width accepted")
	}
	if _, err := Create(filepath.Join(t.TempDir(), "x.avi"), image.Pt(10, 10), 0, 80); err == nil {
		t.Fatalf("zero fps accepted")
	}
}

func TestStamp(t *testing.T) {
	img := solid(120, 40, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	Stamp(img, "Mode=Smoke")
	lit := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 80; x++ {
			if img.RGBAAt(x, y).R > 200 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("caption drew nothing")
	}
	if c := img.RGBAAt(60, 35); c.R != 0 {
		t.Fatalf("below the strip changed: %v", c)
	}
}
