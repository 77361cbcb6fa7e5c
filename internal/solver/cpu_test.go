package solver

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"smokecam/internal/fluid"
)

func newGrids(nx, ny int, density int) fluid.Grids {
	s := fluid.Shape{NX: nx, NY: ny}
	g := fluid.Grids{
		Shape:    s,
		Spacing:  fluid.SpacingFor(s),
		Velocity: fluid.NewVectorField(s),
		Boundary: fluid.NewBoundary(s),
	}
	for k := 0; k < density; k++ {
		g.Density = append(g.Density, fluid.NewScalarField(s))
	}
	return g
}

func TestStepStillFluidStaysStill(t *testing.T) {
	g := newGrids(24, 18, 1)
	c := NewCPU(Config{Iterations: 20, Viscosity: 0.01})
	for k := 0; k < 5; k++ {
		if err := c.Step(0.02, g); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if g.Velocity.MaxSpeed() != 0 {
		t.Fatalf("still fluid started moving: %v", g.Velocity.MaxSpeed())
	}
	if g.Density[0].Sum() != 0 {
		t.Fatalf("density appeared from nowhere")
	}
}

func TestStepUniformFlowIsPreserved(t *testing.T) {
	g := newGrids(32, 24, 0)
	for i := range g.Velocity.U {
		g.Velocity.U[i] = 0.8
		g.Velocity.V[i] = -0.3
	}
	c := NewCPU(Config{Iterations: 30})
	if err := c.Step(0.01, g); err != nil {
		t.Fatal(err)
	}
	for i := range g.Velocity.U {
		if math.Abs(g.Velocity.U[i]-0.8) > 1e-9 || math.Abs(g.Velocity.V[i]+0.3) > 1e-9 {
			t.Fatalf("cell %d: (%v,%v), want (0.8,-0.3)", i, g.Velocity.U[i], g.Velocity.V[i])
		}
	}
}

func TestStepCarriesDensityDownstream(t *testing.T) {
	g := newGrids(40, 20, 1)
	n := g.Shape
	for i := range g.Velocity.U {
		g.Velocity.U[i] = 1
	}
	d := g.Density[0]
	for i := 8; i < 12; i++ {
		for j := 8; j < 12; j++ {
			d.Set(i, j, 1)
		}
	}
	dt := 2 * g.Spacing[0]
	c := NewCPU(Config{Iterations: 10})
	if err := c.Step(dt, g); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n.NX; i++ {
		for j := 0; j < n.NY; j++ {
			want := 0.0
			if i >= 10 && i < 14 && j >= 8 && j < 12 {
				want = 1
			}
			if got := d.At(i, j); got != want {
				t.Fatalf("density at (%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestStepSolidCells(t *testing.T) {
	g := newGrids(30, 20, 1)
	n := g.Shape
	for i := range g.Velocity.U {
		g.Velocity.U[i] = 0.5
	}
	g.Density[0].Fill(0.4)
	for i := 12; i < 16; i++ {
		for j := 6; j < 10; j++ {
			g.Boundary.SetSolid(i, j, true)
			idx := n.Index(i, j)
			g.Velocity.U[idx], g.Velocity.V[idx] = 3, -1
		}
	}
	c := NewCPU(Config{Iterations: 20, Viscosity: 0.001, Dissipation: 0.5})
	for k := 0; k < 3; k++ {
		if err := c.Step(0.01, g); err != nil {
			t.Fatal(err)
		}
	}
	for i := 12; i < 16; i++ {
		for j := 6; j < 10; j++ {
			idx := n.Index(i, j)
			if g.Velocity.U[idx] != 3 || g.Velocity.V[idx] != -1 {
				t.Fatalf("solid (%d,%d) velocity = (%v,%v), want imposed (3,-1)", i, j, g.Velocity.U[idx], g.Velocity.V[idx])
			}
			if g.Density[0].Data[idx] != 0 {
				t.Fatalf("solid (%d,%d) holds density %v", i, j, g.Density[0].Data[idx])
			}
		}
	}
	for idx, v := range g.Density[0].Data {
		if v < 0 || v > 0.4 {
			t.Fatalf("density %v at %d outside [0, 0.4]", v, idx)
		}
	}
}

func TestStepErrors(t *testing.T) {
	c := NewCPU(Config{})
	g := newGrids(10, 8, 1)

	bad := g
	bad.Velocity = fluid.NewVectorField(fluid.Shape{NX: 9, NY: 8})
	if err := c.Step(0.01, bad); !errors.Is(err, fluid.ErrShapeMismatch) {
		t.Fatalf("velocity mismatch: got %v", err)
	}
	bad = g
	bad.Density = []*fluid.ScalarField{fluid.NewScalarField(fluid.Shape{NX: 10, NY: 7})}
	if err := c.Step(0.01, bad); !errors.Is(err, fluid.ErrShapeMismatch) {
		t.Fatalf("density mismatch: got %v", err)
	}
	if err := c.Step(-1, g); !errors.Is(err, fluid.ErrInvalidConfig) {
		t.Fatalf("negative dt: got %v", err)
	}

	g.Velocity.U[g.Shape.Index(4, 4)] = math.NaN()
	if err := c.Step(0.01, g); !errors.Is(err, ErrDiverged) {
		t.Fatalf("NaN velocity: got %v, want ErrDiverged", err)
	}
}

func TestStepInfiniteVelocityReturnsDiverged(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		g := newGrids(32, 24, 1)
		g.Velocity.U[100] = v
		g.Velocity.V[101] = v
		if err := NewCPU(Config{}).Step(0.02, g); !errors.Is(err, ErrDiverged) {
			t.Fatalf("velocity %v: got %v, want ErrDiverged", v, err)
		}
	}
}

func TestZeroStepIsNoop(t *testing.T) {
	g := newGrids(10, 8, 1)
	g.Velocity.U[3] = 2
	g.Density[0].Data[5] = 1
	if err := NewCPU(Config{}).Step(0, g); err != nil {
		t.Fatal(err)
	}
	if g.Velocity.U[3] != 2 || g.Density[0].Data[5] != 1 {
		t.Fatalf("zero step changed the grids")
	}
}

func TestConfigDefaults(t *testing.T) {
	c := NewCPU(Config{Viscosity: 0.2})
	if got := c.Config(); got.Iterations != DefaultConfig.Iterations || got.Viscosity != 0.2 {
		t.Fatalf("config = %+v", got)
	}
}

func TestSample(t *testing.T) {
	s := fluid.Shape{NX: 3, NY: 2}
	f := make([]float64, s.Len())
	for i := 0; i < s.NX; i++ {
		for j := 0; j < s.NY; j++ {
			f[s.Index(i, j)] = float64(10*i + j)
		}
	}
	tests := []struct {
		x, y, want float64
	}{
		{0, 0, 0},
		{1.5, 0, 15},
		{1, 0.5, 10.5},
		{-4, 9, 1},
		{7, -1, 20},
		{math.NaN(), math.NaN(), 0},
		{math.Inf(1), math.Inf(-1), 20},
	}
	for _, tt := range tests {
		if got := sample(f, s, tt.x, tt.y); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("sample(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestParallelRangeVisitsEachIndexOnce(t *testing.T) {
	var hits [97]int32
	parallelRange(3, 97, func(i int) { atomic.AddInt32(&hits[i], 1) })
	for i, h := range hits {
		want := int32(0)
		if i >= 3 {
			want = 1
		}
		if h != want {
			t.Fatalf("index %d visited %d times", i, h)
		}
	}
	parallelRange(5, 5, func(int) { t.Fatal("empty range called fn") })
}
