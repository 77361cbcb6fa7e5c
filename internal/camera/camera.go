// Package camera provides fluid.Camera sources that do not need capture
// hardware: an animated synthetic scene and a still image.
package camera

import (
	"fmt"
	"image"

	"smokecam/internal/fluid"
)

// Source is a camera that can be moved forward in time.
type Source interface {
	fluid.Camera
	Advance(dt float64)
}

func checkSize(size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("%w: camera size %dx%d", fluid.ErrInvalidConfig, size.X, size.Y)
	}
	return nil
}
