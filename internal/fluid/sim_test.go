package fluid

import (
	"errors"
	"image"
	"slices"
	"testing"
)

func TestNewDerivesShapeAndSpacing(t *testing.T) {
	s, _, _ := newTestSim(t, 640, 480, 0.25)
	if got, want := s.Shape(), (Shape{NX: 160, NY: 120}); got != want {
		t.Fatalf("shape = %v, want %v", got, want)
	}
	dx := s.Spacing()
	if dx[0] != (4.0/3.0)/160 || dx[1] != 1.0/120 {
		t.Fatalf("spacing = %v", dx)
	}
	if s.Mode() != ModeSmoke {
		t.Fatalf("new sim starts in %v, want Smoke", s.Mode())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	d := func(s Shape) DensityField { return newFakeDensity(s) }
	solver := &recordingSolver{}
	tests := []struct {
		name   string
		cam    image.Point
		mult   float64
		solver Solver
		dens   func(Shape) DensityField
	}{
		{"zero camera", image.Pt(0, 480), 1, solver, d},
		{"negative multiplier", image.Pt(640, 480), -1, solver, d},
		{"grid too small", image.Pt(8, 8), 0.1, solver, d},
		{"no solver", image.Pt(640, 480), 1, nil, d},
		{"no density", image.Pt(640, 480), 1, solver, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cam, tt.mult, tt.solver, tt.dens); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestResetKeepsBoundary(t *testing.T) {
	s, d, _ := newTestSim(t, 64, 48, 0.5)
	n := s.Shape()
	occ := NewMask(n)
	occ.Set(10, 10, true)
	if err := s.SetBoundary(occ, NewVectorField(n), DirectionPosX); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetVelocity(0.02, 2, DirectionPosX, 2, 1); err != nil {
		t.Fatal(err)
	}
	before := slices.Clone(s.Boundary().Solid().Cells)

	s.Reset()

	if s.Velocity().MaxSpeed() != 0 {
		t.Fatalf("velocity not zero after reset")
	}
	if d.resets != 1 || d.conc.Sum() != 0 {
		t.Fatalf("density not reset: resets=%d sum=%v", d.resets, d.conc.Sum())
	}
	if !slices.Equal(before, s.Boundary().Solid().Cells) {
		t.Fatalf("reset changed the boundary")
	}
	for i, c := range s.Boundary().Solid().Cells {
		if s.Boundary().Open().Cells[i] == c {
			t.Fatalf("complement broken after reset at %d", i)
		}
	}
}

func TestUpdatePassesDensityByMode(t *testing.T) {
	s, d, solver := newTestSim(t, 64, 48, 0.5)
	if err := s.Update(0.03); err != nil {
		t.Fatal(err)
	}
	if solver.calls != 1 || solver.dt != 0.03 {
		t.Fatalf("solver calls=%d dt=%v", solver.calls, solver.dt)
	}
	if len(solver.density) != 1 || solver.density[0] != d.conc {
		t.Fatalf("smoke mode should pass the density field, got %v", solver.density)
	}

	s.SetMode(ModeVelocity)
	if err := s.Update(0.03); err != nil {
		t.Fatal(err)
	}
	if solver.density != nil {
		t.Fatalf("velocity mode should pass no density, got %v", solver.density)
	}
}

func TestUpdateWrapsSolverError(t *testing.T) {
	s, _, solver := newTestSim(t, 64, 48, 0.5)
	boom := errors.New("diverged")
	solver.err = boom
	if err := s.Update(0.01); !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped solver error", err)
	}
}

func TestModeToggleLeavesFields(t *testing.T) {
	s, d, _ := newTestSim(t, 64, 48, 0.5)
	if _, err := s.SetVelocity(0.02, 1.5, DirectionPosY, 3, 0.7); err != nil {
		t.Fatal(err)
	}
	u, v := slices.Clone(s.Velocity().U), slices.Clone(s.Velocity().V)
	conc := slices.Clone(d.conc.Data)

	s.SetMode(s.Mode().Toggle())
	if s.Mode() != ModeVelocity {
		t.Fatalf("toggle from Smoke gave %v", s.Mode())
	}
	s.SetMode(s.Mode().Toggle())

	if !slices.Equal(u, s.Velocity().U) || !slices.Equal(v, s.Velocity().V) {
		t.Fatalf("mode toggle changed velocity")
	}
	if !slices.Equal(conc, d.conc.Data) {
		t.Fatalf("mode toggle changed density")
	}
}

func TestVelocityIsLive(t *testing.T) {
	s, _, _ := newTestSim(t, 64, 48, 0.5)
	v := s.Velocity()
	if _, err := s.SetVelocity(0.02, 1, DirectionPosX, 1, 0); err != nil {
		t.Fatal(err)
	}
	if v.U[0] != 1 {
		t.Fatalf("Velocity() should alias the live field")
	}
}

func TestParseDirection(t *testing.T) {
	for v := 0; v < NumDirections; v++ {
		d, err := ParseDirection(v)
		if err != nil || int(d) != v {
			t.Fatalf("ParseDirection(%d) = %v, %v", v, d, err)
		}
	}
	for _, v := range []int{-1, 4, 9} {
		if _, err := ParseDirection(v); !errors.Is(err, ErrInvalidDirection) {
			t.Fatalf("ParseDirection(%d) err = %v", v, err)
		}
	}
	axes := map[Direction][2]float64{
		DirectionPosX: {0, 1}, DirectionPosY: {1, 1}, DirectionNegX: {0, -1}, DirectionNegY: {1, -1},
	}
	for d, want := range axes {
		if float64(d.Axis()) != want[0] || d.Sign() != want[1] {
			t.Fatalf("%v: axis=%d sign=%v", d, d.Axis(), d.Sign())
		}
	}
}

func TestMaxSpeedAndSum(t *testing.T) {
	s := Shape{NX: 3, NY: 2}
	v := NewVectorField(s)
	v.U[1], v.V[1] = 3, 4
	v.U[4] = -2
	if got := v.MaxSpeed(); got != 5 {
		t.Fatalf("MaxSpeed = %v, want 5", got)
	}
	f := NewScalarField(s)
	f.Fill(0.5)
	if got := f.Sum(); got != 3 {
		t.Fatalf("Sum = %v, want 3", got)
	}
	f.Set(2, 1, 7)
	if f.Dense().At(2, 1) != 7 {
		t.Fatalf("Dense view does not share storage")
	}
}
