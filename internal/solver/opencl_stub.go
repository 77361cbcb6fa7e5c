//go:build !opencl

package solver

import (
	"errors"

	"smokecam/internal/fluid"
)

// ErrOpenCLDisabled is returned by NewOpenCL in builds without the opencl tag.
var ErrOpenCLDisabled = errors.New("OpenCL support is not enabled; rebuild with -tags opencl")

type OpenCL struct{}

func NewOpenCL(Config) (*OpenCL, error) {
	return nil, ErrOpenCLDisabled
}

func (s *OpenCL) Step(float64, fluid.Grids) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *OpenCL) Close() {}

func (s *OpenCL) DeviceName() string { return "" }
