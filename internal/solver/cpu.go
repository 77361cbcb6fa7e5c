package solver

import (
	"fmt"
	"math"

	"smokecam/internal/fluid"
)

// CPU is a collocated stable-fluids solver. Solid cells keep whatever
// velocity the boundary imposed on them and act as Neumann walls for the
// pressure solve. A CPU keeps scratch buffers between steps and is not safe
// for concurrent use.
type CPU struct {
	cfg   Config
	shape fluid.Shape

	u0, v0 []float64
	x0     []float64
	next   []float64
	p      []float64
	div    []float64
}

// NewCPU returns a solver using cfg.
func NewCPU(cfg Config) *CPU {
	return &CPU{cfg: cfg.withDefaults()}
}

// Config returns the settings in use.
func (c *CPU) Config() Config { return c.cfg }

// Step advances g by dt: diffuse, project, advect velocity, project again,
// then carry every density grid along the result.
func (c *CPU) Step(dt float64, g fluid.Grids) error {
	if err := checkGrids(g); err != nil {
		return err
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: time step %g", fluid.ErrInvalidConfig, dt)
	}
	if dt == 0 {
		return nil
	}
	c.ensure(g.Shape)

	v := g.Velocity
	if c.cfg.Viscosity > 0 {
		c.diffuse(dt, g, v.U)
		c.diffuse(dt, g, v.V)
	}
	c.project(g)
	if err := checkFinite(v); err != nil {
		return err
	}
	c.advectVelocity(dt, g)
	c.project(g)

	k := decay(c.cfg.Dissipation, dt)
	for _, d := range g.Density {
		c.advectScalar(dt, g, d.Data, k)
	}
	return checkFinite(v)
}

func (c *CPU) ensure(s fluid.Shape) {
	if c.shape == s && c.p != nil {
		return
	}
	n := s.Len()
	c.shape = s
	c.u0 = make([]float64, n)
	c.v0 = make([]float64, n)
	c.x0 = make([]float64, n)
	c.next = make([]float64, n)
	c.p = make([]float64, n)
	c.div = make([]float64, n)
}

// diffuse runs implicit viscosity on one velocity component with Jacobi
// sweeps. Neighbours outside the grid repeat the edge value.
func (c *CPU) diffuse(dt float64, g fluid.Grids, x []float64) {
	n, dx := g.Shape, g.Spacing
	solid := g.Boundary.Solid().Cells
	ax := dt * c.cfg.Viscosity / (dx[0] * dx[0])
	ay := dt * c.cfg.Viscosity / (dx[1] * dx[1])
	denom := 1 + 2*ax + 2*ay

	copy(c.x0, x)
	for it := 0; it < c.cfg.Iterations; it++ {
		parallelRange(0, n.NX, func(i int) {
			il, ir := clampIndex(i-1, 0, n.NX-1), clampIndex(i+1, 0, n.NX-1)
			for j := 0; j < n.NY; j++ {
				idx := n.Index(i, j)
				if solid[idx] {
					c.next[idx] = x[idx]
					continue
				}
				jd, ju := clampIndex(j-1, 0, n.NY-1), clampIndex(j+1, 0, n.NY-1)
				sx := x[n.Index(il, j)] + x[n.Index(ir, j)]
				sy := x[n.Index(i, jd)] + x[n.Index(i, ju)]
				c.next[idx] = (c.x0[idx] + ax*sx + ay*sy) / denom
			}
		})
		copy(x, c.next)
	}
}

// project removes the divergent part of the velocity. Pressure has a zero
// normal gradient against solid cells and the grid edge.
func (c *CPU) project(g fluid.Grids) {
	n, dx := g.Shape, g.Spacing
	u, v := g.Velocity.U, g.Velocity.V
	b := g.Boundary
	solid := b.Solid().Cells

	parallelRange(0, n.NX, func(i int) {
		il, ir := clampIndex(i-1, 0, n.NX-1), clampIndex(i+1, 0, n.NX-1)
		for j := 0; j < n.NY; j++ {
			idx := n.Index(i, j)
			if solid[idx] {
				c.div[idx] = 0
				continue
			}
			jd, ju := clampIndex(j-1, 0, n.NY-1), clampIndex(j+1, 0, n.NY-1)
			c.div[idx] = (u[n.Index(ir, j)]-u[n.Index(il, j)])/(2*dx[0]) +
				(v[n.Index(i, ju)]-v[n.Index(i, jd)])/(2*dx[1])
		}
	})

	clear(c.p)
	wx, wy := 1/(dx[0]*dx[0]), 1/(dx[1]*dx[1])
	for it := 0; it < c.cfg.Iterations; it++ {
		p := c.p
		parallelRange(0, n.NX, func(i int) {
			for j := 0; j < n.NY; j++ {
				idx := n.Index(i, j)
				if solid[idx] {
					c.next[idx] = 0
					continue
				}
				var sum, w float64
				if !b.IsSolid(i-1, j) {
					sum += wx * p[idx-n.NY]
					w += wx
				}
				if !b.IsSolid(i+1, j) {
					sum += wx * p[idx+n.NY]
					w += wx
				}
				if !b.IsSolid(i, j-1) {
					sum += wy * p[idx-1]
					w += wy
				}
				if !b.IsSolid(i, j+1) {
					sum += wy * p[idx+1]
					w += wy
				}
				if w == 0 {
					c.next[idx] = 0
					continue
				}
				c.next[idx] = (sum - c.div[idx]) / w
			}
		})
		c.p, c.next = c.next, c.p
	}

	p := c.p
	parallelRange(0, n.NX, func(i int) {
		for j := 0; j < n.NY; j++ {
			idx := n.Index(i, j)
			if solid[idx] {
				continue
			}
			pc := p[idx]
			pl, pr, pd, pu := pc, pc, pc, pc
			if !b.IsSolid(i-1, j) {
				pl = p[idx-n.NY]
			}
			if !b.IsSolid(i+1, j) {
				pr = p[idx+n.NY]
			}
			if !b.IsSolid(i, j-1) {
				pd = p[idx-1]
			}
			if !b.IsSolid(i, j+1) {
				pu = p[idx+1]
			}
			u[idx] -= (pr - pl) / (2 * dx[0])
			v[idx] -= (pu - pd) / (2 * dx[1])
		}
	})
}

// advectVelocity moves the velocity along itself with a semi-Lagrangian
// back-trace.
func (c *CPU) advectVelocity(dt float64, g fluid.Grids) {
	n, dx := g.Shape, g.Spacing
	u, v := g.Velocity.U, g.Velocity.V
	solid := g.Boundary.Solid().Cells
	copy(c.u0, u)
	copy(c.v0, v)
	parallelRange(0, n.NX, func(i int) {
		for j := 0; j < n.NY; j++ {
			idx := n.Index(i, j)
			if solid[idx] {
				continue
			}
			x := float64(i) - dt*c.u0[idx]/dx[0]
			y := float64(j) - dt*c.v0[idx]/dx[1]
			u[idx] = sample(c.u0, n, x, y)
			v[idx] = sample(c.v0, n, x, y)
		}
	})
}

// advectScalar carries one density grid along the velocity, scales it by k,
// and empties solid cells.
func (c *CPU) advectScalar(dt float64, g fluid.Grids, d []float64, k float64) {
	n, dx := g.Shape, g.Spacing
	u, v := g.Velocity.U, g.Velocity.V
	solid := g.Boundary.Solid().Cells
	copy(c.x0, d)
	parallelRange(0, n.NX, func(i int) {
		for j := 0; j < n.NY; j++ {
			idx := n.Index(i, j)
			if solid[idx] {
				d[idx] = 0
				continue
			}
			x := float64(i) - dt*u[idx]/dx[0]
			y := float64(j) - dt*v[idx]/dx[1]
			d[idx] = math.Max(sample(c.x0, n, x, y), 0) * k
		}
	})
}

// sample bilinearly interpolates f at cell coordinates (x, y), clamped to
// the grid. NaN coordinates sample the first cell.
func sample(f []float64, n fluid.Shape, x, y float64) float64 {
	if !(x >= 0) {
		x = 0
	}
	if !(y >= 0) {
		y = 0
	}
	x = math.Max(0, math.Min(x, float64(n.NX-1)))
	y = math.Max(0, math.Min(y, float64(n.NY-1)))
	i0, j0 := int(x), int(y)
	i1, j1 := min(i0+1, n.NX-1), min(j0+1, n.NY-1)
	tx, ty := x-float64(i0), y-float64(j0)
	sx, sy := 1-tx, 1-ty
	return sx*sy*f[n.Index(i0, j0)] +
		tx*sy*f[n.Index(i1, j0)] +
		tx*ty*f[n.Index(i1, j1)] +
		sx*ty*f[n.Index(i0, j1)]
}
