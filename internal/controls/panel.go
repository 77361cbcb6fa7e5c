package controls

import (
	"math"
	"strings"

	"smokecam/internal/fluid"
)

// Defaults seeds a Panel.
type Defaults struct {
	Mode      fluid.Mode
	Direction fluid.Direction
	Speed     float64
	Streams   int
	Smoke     float64
	DT        float64
}

// Panel groups the runtime settings and their keys:
//
//	m      mode
//	d      flow direction
//	- =    flow speed
//	[ ]    stream count
//	, .    smoke per step
//	; '    time step
type Panel struct {
	mode      *CycleOption
	direction *CycleOption
	speed     *RangeOption
	streams   *RangeOption
	smoke     *RangeOption
	dt        *RangeOption
}

// NewPanel builds a panel starting from d.
func NewPanel(d Defaults) (*Panel, error) {
	var (
		p   Panel
		err error
	)
	if p.mode, err = NewCycleOption("Mode", 'm', []string{fluid.ModeSmoke.String(), fluid.ModeVelocity.String()}, int(d.Mode)); err != nil {
		return nil, err
	}
	dirs := make([]string, fluid.NumDirections)
	for k := range dirs {
		dirs[k] = fluid.Direction(k).String()
	}
	if p.direction, err = NewCycleOption("Direction", 'd', dirs, int(d.Direction)); err != nil {
		return nil, err
	}
	if p.speed, err = NewRangeOption("Speed", []rune{'-', '='}, []float64{0.05, 3}, 0.05, d.Speed); err != nil {
		return nil, err
	}
	if p.streams, err = NewRangeOption("Streams", []rune{'[', ']'}, []float64{1, 16}, 1, float64(d.Streams)); err != nil {
		return nil, err
	}
	if p.smoke, err = NewRangeOption("Smoke", []rune{',', '.'}, []float64{0, 1}, 0.05, d.Smoke); err != nil {
		return nil, err
	}
	if p.dt, err = NewRangeOption("dt", []rune{';', '\''}, []float64{0.005, 0.1}, 0.005, d.DT); err != nil {
		return nil, err
	}
	return &p, nil
}

type option interface {
	Poll(r rune) bool
	String() string
}

func (p *Panel) options() []option {
	return []option{p.mode, p.direction, p.speed, p.streams, p.smoke, p.dt}
}

// Poll offers r to every option and reports whether any consumed it.
func (p *Panel) Poll(r rune) bool {
	for _, o := range p.options() {
		if o.Poll(r) {
			return true
		}
	}
	return false
}

func (p *Panel) Mode() fluid.Mode           { return fluid.Mode(p.mode.Current()) }
func (p *Panel) Direction() fluid.Direction { return fluid.Direction(p.direction.Current()) }
func (p *Panel) Speed() float64             { return p.speed.Current() }
func (p *Panel) Streams() int               { return int(math.Round(p.streams.Current())) }
func (p *Panel) Smoke() float64             { return p.smoke.Current() }
func (p *Panel) DT() float64                { return p.dt.Current() }

// Lines returns one rendered option per line.
func (p *Panel) Lines() []string {
	opts := p.options()
	lines := make([]string, len(opts))
	for k, o := range opts {
		lines[k] = o.String()
	}
	return lines
}

func (p *Panel) String() string { return strings.Join(p.Lines(), "  ") }
