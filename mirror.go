package main

import (
	"fmt"
	"image"
	"time"

	"smokecam/internal/camera"
	"smokecam/internal/controls"
	"smokecam/internal/fluid"
	"smokecam/internal/smoke"
)

// mirror ties a camera to the simulation and the control panel. Both the
// window and the headless runner drive it one frame at a time.
type mirror struct {
	sim   *fluid.Sim
	cam   camera.Source
	panel *controls.Panel
	opts  fluid.RenderOptions

	// still is the velocity imposed on occupied cells.
	still *fluid.VectorField

	frames   int
	lastStep time.Duration
}

func newMirror(cfg Config, cam camera.Source, slv fluid.Solver) (*mirror, error) {
	palette, err := smoke.Palette(cfg.Palette)
	if err != nil {
		return nil, err
	}
	dir, err := fluid.ParseDirection(cfg.Direction)
	if err != nil {
		return nil, err
	}
	density := smoke.Factory(smoke.WithPalette(palette), smoke.WithOpacity(cfg.Opacity))
	sim, err := fluid.New(cam.Size(), cfg.Multiplier, slv, density, fluid.WithHSVPower(cfg.HSVPower))
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	panel, err := controls.NewPanel(controls.Defaults{
		Mode:      fluid.ModeSmoke,
		Direction: dir,
		Speed:     cfg.Speed,
		Streams:   cfg.Streams,
		Smoke:     cfg.Smoke,
		DT:        cfg.DT,
	})
	if err != nil {
		return nil, fmt.Errorf("creating controls: %w", err)
	}
	return &mirror{
		sim:   sim,
		cam:   cam,
		panel: panel,
		still: fluid.NewVectorField(sim.Shape()),
	}, nil
}

// step advances the camera and the flow by one panel time step: the
// boundary follows the camera mask, the inflow is forced, then the solver
// runs.
func (m *mirror) step() error {
	p := m.panel
	dir, dt := p.Direction(), p.DT()
	m.sim.SetMode(p.Mode())
	m.cam.Advance(dt)

	occupied := fluid.OccupancyFromMask(m.cam.Mask(), m.sim.Shape(), maskThreshold)
	if err := m.sim.SetBoundary(occupied, m.still, dir); err != nil {
		return err
	}
	if _, err := m.sim.SetVelocity(dt, p.Speed(), dir, p.Streams(), p.Smoke()); err != nil {
		return err
	}

	start := time.Now()
	err := m.sim.Update(dt)
	m.lastStep = time.Since(start)
	if err != nil {
		return fmt.Errorf("frame %d: %w", m.frames, err)
	}
	m.frames++
	return nil
}

func (m *mirror) render() (*image.RGBA, error) {
	return m.sim.Render(m.cam, m.opts)
}

// handleRune applies a typed key and reports whether it was used.
func (m *mirror) handleRune(r rune) bool {
	if m.panel.Poll(r) {
		return true
	}
	switch r {
	case 'r':
		m.sim.Reset()
	case 'k':
		m.opts.ShowMask = !m.opts.ShowMask
	case 'b':
		m.opts.MaskVelocity = !m.opts.MaskVelocity
	default:
		return false
	}
	return true
}

// mass is the total smoke concentration on the grid.
func (m *mirror) mass() float64 {
	fields := m.sim.Density().Field()
	if len(fields) == 0 {
		return 0
	}
	return fields[0].Sum()
}

func (m *mirror) status() string {
	return fmt.Sprintf("frame %d  grid %v  step %.2fms  max|v| %.3f  mass %.2f  %s",
		m.frames, m.sim.Shape(), m.lastStep.Seconds()*1000,
		m.sim.Velocity().MaxSpeed(), m.mass(), m.panel)
}
