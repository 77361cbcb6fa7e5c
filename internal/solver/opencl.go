//go:build opencl

package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"smokecam/internal/fluid"
)

// OpenCL runs the CPU solver's step as OpenCL kernels in float32. Grids are
// uploaded and read back every step, so the host copy stays authoritative.
type OpenCL struct {
	cfg Config

	context  *cl.Context
	queue    *cl.CommandQueue
	program  *cl.Program
	advect   *cl.Kernel
	diffuse  *cl.Kernel
	diverge  *cl.Kernel
	jacobi   *cl.Kernel
	gradient *cl.Kernel

	deviceName string
	shape      fluid.Shape

	uBuf, vBuf     *cl.MemObject
	u0Buf, v0Buf   *cl.MemObject
	xBuf, x0Buf    *cl.MemObject
	pBuf, pNextBuf *cl.MemObject
	divBuf         *cl.MemObject
	solidBuf       *cl.MemObject

	hostU, hostV []float32
	hostX        []float32
	hostSolid    []int32
	zeros        []float32
}

const fluidKernelSource = `
int cell(int i, int j, int ny) { return i * ny + j; }

__kernel void advect(
    const int nx,
    const int ny,
    const float sx,
    const float sy,
    const float k,
    const int clear_solid,
    __global const float* u,
    __global const float* v,
    __global const int* solid,
    __global const float* src,
    __global float* dst)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny) {
        return;
    }
    if (solid[idx]) {
        dst[idx] = clear_solid ? 0.0f : src[idx];
        return;
    }
    int i = idx / ny;
    int j = idx % ny;
    float x = clamp((float)i - sx * u[idx], 0.0f, (float)(nx - 1));
    float y = clamp((float)j - sy * v[idx], 0.0f, (float)(ny - 1));
    int i0 = (int)x;
    int j0 = (int)y;
    int i1 = min(i0 + 1, nx - 1);
    int j1 = min(j0 + 1, ny - 1);
    float tx = x - (float)i0;
    float ty = y - (float)j0;
    float val = (1.0f - tx) * (1.0f - ty) * src[cell(i0, j0, ny)] +
                tx * (1.0f - ty) * src[cell(i1, j0, ny)] +
                tx * ty * src[cell(i1, j1, ny)] +
                (1.0f - tx) * ty * src[cell(i0, j1, ny)];
    if (clear_solid) {
        val = fmax(val, 0.0f);
    }
    dst[idx] = val * k;
}

__kernel void diffuse(
    const int nx,
    const int ny,
    const float ax,
    const float ay,
    __global const int* solid,
    __global const float* x0,
    __global const float* x,
    __global float* out)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny) {
        return;
    }
    if (solid[idx]) {
        out[idx] = x[idx];
        return;
    }
    int i = idx / ny;
    int j = idx % ny;
    int il = max(i - 1, 0);
    int ir = min(i + 1, nx - 1);
    int jd = max(j - 1, 0);
    int ju = min(j + 1, ny - 1);
    float sx = x[cell(il, j, ny)] + x[cell(ir, j, ny)];
    float sy = x[cell(i, jd, ny)] + x[cell(i, ju, ny)];
    out[idx] = (x0[idx] + ax * sx + ay * sy) / (1.0f + 2.0f * ax + 2.0f * ay);
}

__kernel void divergence(
    const int nx,
    const int ny,
    const float hx,
    const float hy,
    __global const int* solid,
    __global const float* u,
    __global const float* v,
    __global float* div)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny) {
        return;
    }
    if (solid[idx]) {
        div[idx] = 0.0f;
        return;
    }
    int i = idx / ny;
    int j = idx % ny;
    int il = max(i - 1, 0);
    int ir = min(i + 1, nx - 1);
    int jd = max(j - 1, 0);
    int ju = min(j + 1, ny - 1);
    div[idx] = (u[cell(ir, j, ny)] - u[cell(il, j, ny)]) * hx +
               (v[cell(i, ju, ny)] - v[cell(i, jd, ny)]) * hy;
}

int open_cell(int i, int j, int nx, int ny, __global const int* solid) {
    if (i < 0 || i >= nx || j < 0 || j >= ny) {
        return 0;
    }
    return !solid[cell(i, j, ny)];
}

__kernel void jacobi(
    const int nx,
    const int ny,
    const float wx,
    const float wy,
    __global const int* solid,
    __global const float* div,
    __global const float* p,
    __global float* out)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny) {
        return;
    }
    if (solid[idx]) {
        out[idx] = 0.0f;
        return;
    }
    int i = idx / ny;
    int j = idx % ny;
    float sum = 0.0f;
    float w = 0.0f;
    if (open_cell(i - 1, j, nx, ny, solid)) { sum += wx * p[idx - ny]; w += wx; }
    if (open_cell(i + 1, j, nx, ny, solid)) { sum += wx * p[idx + ny]; w += wx; }
    if (open_cell(i, j - 1, nx, ny, solid)) { sum += wy * p[idx - 1]; w += wy; }
    if (open_cell(i, j + 1, nx, ny, solid)) { sum += wy * p[idx + 1]; w += wy; }
    out[idx] = w > 0.0f ? (sum - div[idx]) / w : 0.0f;
}

__kernel void subtract_gradient(
    const int nx,
    const int ny,
    const float hx,
    const float hy,
    __global const int* solid,
    __global const float* p,
    __global float* u,
    __global float* v)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny || solid[idx]) {
        return;
    }
    int i = idx / ny;
    int j = idx % ny;
    float pc = p[idx];
    float pl = open_cell(i - 1, j, nx, ny, solid) ? p[idx - ny] : pc;
    float pr = open_cell(i + 1, j, nx, ny, solid) ? p[idx + ny] : pc;
    float pd = open_cell(i, j - 1, nx, ny, solid) ? p[idx - 1] : pc;
    float pu = open_cell(i, j + 1, nx, ny, solid) ? p[idx + 1] : pc;
    u[idx] -= (pr - pl) * hx;
    v[idx] -= (pu - pd) * hy;
}`

// NewOpenCL compiles the fluid kernels on the first GPU found, falling back
// to a CPU device. Buffers are allocated on the first Step.
func NewOpenCL(cfg Config) (*OpenCL, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &OpenCL{cfg: cfg.withDefaults(), deviceName: device.Name()}
	s.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	s.queue, err = s.context.CreateCommandQueue(device, 0)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	s.program, err = s.context.CreateProgramWithSource([]string{fluidKernelSource})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	for _, k := range []struct {
		name string
		dst  **cl.Kernel
	}{
		{"advect", &s.advect},
		{"diffuse", &s.diffuse},
		{"divergence", &s.diverge},
		{"jacobi", &s.jacobi},
		{"subtract_gradient", &s.gradient},
	} {
		kernel, err := s.program.CreateKernel(k.name)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating %s kernel: %w", k.name, err)
		}
		*k.dst = kernel
	}
	return s, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// DeviceName reports the device the kernels run on.
func (s *OpenCL) DeviceName() string { return s.deviceName }

// Step mirrors CPU.Step.
func (s *OpenCL) Step(dt float64, g fluid.Grids) error {
	if err := checkGrids(g); err != nil {
		return err
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: time step %g", fluid.ErrInvalidConfig, dt)
	}
	if dt == 0 {
		return nil
	}
	if err := s.ensureBuffers(g.Shape); err != nil {
		return err
	}
	n, dx := g.Shape, g.Spacing
	nx, ny := int32(n.NX), int32(n.NY)
	global := []int{n.Len()}

	for idx, c := range g.Boundary.Solid().Cells {
		s.hostSolid[idx] = 0
		if c {
			s.hostSolid[idx] = 1
		}
	}
	ptr := unsafe.Pointer(&s.hostSolid[0])
	if _, err := s.queue.EnqueueWriteBuffer(s.solidBuf, false, 0, len(s.hostSolid)*4, ptr, nil); err != nil {
		return fmt.Errorf("writing solid buffer: %w", err)
	}
	toFloat32(s.hostU, g.Velocity.U)
	toFloat32(s.hostV, g.Velocity.V)
	if err := s.write(s.uBuf, s.hostU, "u"); err != nil {
		return err
	}
	if err := s.write(s.vBuf, s.hostV, "v"); err != nil {
		return err
	}

	if s.cfg.Viscosity > 0 {
		ax := float32(dt * s.cfg.Viscosity / (dx[0] * dx[0]))
		ay := float32(dt * s.cfg.Viscosity / (dx[1] * dx[1]))
		for _, buf := range []*cl.MemObject{s.uBuf, s.vBuf} {
			if err := s.diffuseBuffer(buf, nx, ny, ax, ay, global); err != nil {
				return err
			}
		}
	}
	if err := s.project(nx, ny, dx, global); err != nil {
		return err
	}

	if err := s.copyBuffer(s.uBuf, s.u0Buf); err != nil {
		return err
	}
	if err := s.copyBuffer(s.vBuf, s.v0Buf); err != nil {
		return err
	}
	sx, sy := float32(dt/dx[0]), float32(dt/dx[1])
	for _, pair := range [][2]*cl.MemObject{{s.u0Buf, s.uBuf}, {s.v0Buf, s.vBuf}} {
		if err := s.advect.SetArgs(nx, ny, sx, sy, float32(1), int32(0), s.u0Buf, s.v0Buf, s.solidBuf, pair[0], pair[1]); err != nil {
			return fmt.Errorf("setting advect arguments: %w", err)
		}
		if _, err := s.queue.EnqueueNDRangeKernel(s.advect, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing velocity advection: %w", err)
		}
	}
	if err := s.project(nx, ny, dx, global); err != nil {
		return err
	}

	k := float32(decay(s.cfg.Dissipation, dt))
	for _, d := range g.Density {
		toFloat32(s.hostX, d.Data)
		if err := s.write(s.x0Buf, s.hostX, "density"); err != nil {
			return err
		}
		if err := s.advect.SetArgs(nx, ny, sx, sy, k, int32(1), s.uBuf, s.vBuf, s.solidBuf, s.x0Buf, s.xBuf); err != nil {
			return fmt.Errorf("setting advect arguments: %w", err)
		}
		if _, err := s.queue.EnqueueNDRangeKernel(s.advect, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing density advection: %w", err)
		}
		if _, err := s.queue.EnqueueReadBufferFloat32(s.xBuf, true, 0, s.hostX, nil); err != nil {
			return fmt.Errorf("reading density buffer: %w", err)
		}
		fromFloat32(d.Data, s.hostX)
	}

	if _, err := s.queue.EnqueueReadBufferFloat32(s.uBuf, true, 0, s.hostU, nil); err != nil {
		return fmt.Errorf("reading u buffer: %w", err)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.vBuf, true, 0, s.hostV, nil); err != nil {
		return fmt.Errorf("reading v buffer: %w", err)
	}
	fromFloat32(g.Velocity.U, s.hostU)
	fromFloat32(g.Velocity.V, s.hostV)
	return checkFinite(g.Velocity)
}

func (s *OpenCL) diffuseBuffer(buf *cl.MemObject, nx, ny int32, ax, ay float32, global []int) error {
	if err := s.copyBuffer(buf, s.x0Buf); err != nil {
		return err
	}
	src, dst := buf, s.xBuf
	for it := 0; it < s.cfg.Iterations; it++ {
		if err := s.diffuse.SetArgs(nx, ny, ax, ay, s.solidBuf, s.x0Buf, src, dst); err != nil {
			return fmt.Errorf("setting diffuse arguments: %w", err)
		}
		if _, err := s.queue.EnqueueNDRangeKernel(s.diffuse, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing diffusion: %w", err)
		}
		src, dst = dst, src
	}
	if src != buf {
		return s.copyBuffer(src, buf)
	}
	return nil
}

func (s *OpenCL) project(nx, ny int32, dx fluid.Spacing, global []int) error {
	hx, hy := float32(1/(2*dx[0])), float32(1/(2*dx[1]))
	if err := s.diverge.SetArgs(nx, ny, hx, hy, s.solidBuf, s.uBuf, s.vBuf, s.divBuf); err != nil {
		return fmt.Errorf("setting divergence arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.diverge, nil, global, nil, nil); err != nil {
		return fmt.Errorf("enqueueing divergence: %w", err)
	}
	if err := s.write(s.pBuf, s.zeros, "pressure"); err != nil {
		return err
	}
	wx, wy := float32(1/(dx[0]*dx[0])), float32(1/(dx[1]*dx[1]))
	src, dst := s.pBuf, s.pNextBuf
	for it := 0; it < s.cfg.Iterations; it++ {
		if err := s.jacobi.SetArgs(nx, ny, wx, wy, s.solidBuf, s.divBuf, src, dst); err != nil {
			return fmt.Errorf("setting jacobi arguments: %w", err)
		}
		if _, err := s.queue.EnqueueNDRangeKernel(s.jacobi, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing jacobi: %w", err)
		}
		src, dst = dst, src
	}
	if err := s.gradient.SetArgs(nx, ny, hx, hy, s.solidBuf, src, s.uBuf, s.vBuf); err != nil {
		return fmt.Errorf("setting gradient arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.gradient, nil, global, nil, nil); err != nil {
		return fmt.Errorf("enqueueing gradient: %w", err)
	}
	return nil
}

// copyBuffer goes through host memory and clobbers hostX.
func (s *OpenCL) copyBuffer(src, dst *cl.MemObject) error {
	if _, err := s.queue.EnqueueReadBufferFloat32(src, true, 0, s.hostX, nil); err != nil {
		return fmt.Errorf("reading buffer for copy: %w", err)
	}
	return s.write(dst, s.hostX, "copy")
}

func (s *OpenCL) write(buf *cl.MemObject, host []float32, label string) error {
	if _, err := s.queue.EnqueueWriteBufferFloat32(buf, true, 0, host, nil); err != nil {
		return fmt.Errorf("writing %s buffer: %w", label, err)
	}
	return nil
}

func (s *OpenCL) ensureBuffers(shape fluid.Shape) error {
	if s.shape == shape && s.uBuf != nil {
		return nil
	}
	s.releaseBuffers()
	size := shape.Len()
	byteSize := size * int(unsafe.Sizeof(float32(0)))
	for _, b := range []struct {
		dst   **cl.MemObject
		label string
	}{
		{&s.uBuf, "u"}, {&s.vBuf, "v"}, {&s.u0Buf, "u0"}, {&s.v0Buf, "v0"},
		{&s.xBuf, "scalar"}, {&s.x0Buf, "scalar source"},
		{&s.pBuf, "pressure"}, {&s.pNextBuf, "pressure scratch"}, {&s.divBuf, "divergence"},
	} {
		buf, err := s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize)
		if err != nil {
			s.releaseBuffers()
			return fmt.Errorf("allocating %s buffer: %w", b.label, err)
		}
		*b.dst = buf
	}
	solid, err := s.context.CreateEmptyBuffer(cl.MemReadOnly, size*int(unsafe.Sizeof(int32(0))))
	if err != nil {
		s.releaseBuffers()
		return fmt.Errorf("allocating solid buffer: %w", err)
	}
	s.solidBuf = solid
	s.shape = shape
	s.hostU = make([]float32, size)
	s.hostV = make([]float32, size)
	s.hostX = make([]float32, size)
	s.hostSolid = make([]int32, size)
	s.zeros = make([]float32, size)
	return nil
}

func (s *OpenCL) releaseBuffers() {
	for _, b := range []**cl.MemObject{
		&s.uBuf, &s.vBuf, &s.u0Buf, &s.v0Buf, &s.xBuf, &s.x0Buf,
		&s.pBuf, &s.pNextBuf, &s.divBuf, &s.solidBuf,
	} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
	s.shape = fluid.Shape{}
}

// Close releases every OpenCL object. The solver is unusable afterwards.
func (s *OpenCL) Close() {
	s.releaseBuffers()
	for _, k := range []**cl.Kernel{&s.advect, &s.diffuse, &s.diverge, &s.jacobi, &s.gradient} {
		if *k != nil {
			(*k).Release()
			*k = nil
		}
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}

func toFloat32(dst []float32, src []float64) {
	for i, v := range src {
		dst[i] = float32(v)
	}
}

func fromFloat32(dst []float64, src []float32) {
	for i, v := range src {
		dst[i] = float64(v)
	}
}
