// Package record writes rendered frames to a Motion JPEG AVI file, each
// stamped with a one-line caption.
package record

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/icza/mjpeg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 85

// Recorder appends frames of a fixed size to an AVI file.
type Recorder struct {
	path    string
	size    image.Point
	quality int
	aw      mjpeg.AviWriter
	canvas  *image.RGBA
	buf     bytes.Buffer
	frames  int
}

// Create opens path for writing. Every frame passed to AddFrame must have
// the given size.
func Create(path string, size image.Point, fps, quality int) (*Recorder, error) {
	if size.X <= 0 || size.Y <= 0 || fps <= 0 {
		return nil, fmt.Errorf("record: invalid video %dx%d at %d fps", size.X, size.Y, fps)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	aw, err := mjpeg.New(path, int32(size.X), int32(size.Y), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &Recorder{
		path:    path,
		size:    size,
		quality: quality,
		aw:      aw,
		canvas:  image.NewRGBA(image.Rect(0, 0, size.X, size.Y)),
	}, nil
}

// AddFrame stamps caption onto a copy of img and appends it to the video.
func (r *Recorder) AddFrame(img image.Image, caption string) error {
	if got := img.Bounds().Size(); got != r.size {
		return fmt.Errorf("record: frame is %v, video is %v", got, r.size)
	}
	draw.Draw(r.canvas, r.canvas.Bounds(), img, img.Bounds().Min, draw.Src)
	if caption != "" {
		Stamp(r.canvas, caption)
	}
	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, r.canvas, &jpeg.Options{Quality: r.quality}); err != nil {
		return fmt.Errorf("encoding frame %d: %w", r.frames, err)
	}
	if err := r.aw.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("writing frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int { return r.frames }

// Path returns the output file name.
func (r *Recorder) Path() string { return r.path }

// Close finalises the AVI index. The file is unreadable until Close returns.
func (r *Recorder) Close() error {
	if err := r.aw.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", r.path, err)
	}
	return nil
}

const (
	captionPad  = 3
	captionLine = 13
)

var captionBackground = image.NewUniform(color.RGBA{A: 0xb0})

// Stamp writes text in white on a dark strip across the top of dst.
func Stamp(dst draw.Image, text string) {
	b := dst.Bounds()
	face := basicfont.Face7x13
	strip := image.Rect(b.Min.X, b.Min.Y, b.Max.X, min(b.Min.Y+captionLine+2*captionPad, b.Max.Y))
	draw.Draw(dst, strip, captionBackground, image.Point{}, draw.Over)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(b.Min.X+captionPad, b.Min.Y+captionPad+face.Ascent),
	}
	d.DrawString(text)
}
