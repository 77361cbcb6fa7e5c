package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"smokecam/internal/record"
)

// report collects one sample per simulated frame.
type report struct {
	maxSpeed []float64
	mass     []float64
	stepMS   []float64
	elapsed  time.Duration
}

// runHeadless steps m for the given number of frames without a window. Each
// rendered frame goes to rec when it is not nil.
func runHeadless(m *mirror, frames int, rec *record.Recorder) (report, error) {
	if frames <= 0 {
		return report{}, errors.New("headless run needs at least one frame")
	}
	r := report{
		maxSpeed: make([]float64, 0, frames),
		mass:     make([]float64, 0, frames),
		stepMS:   make([]float64, 0, frames),
	}
	start := time.Now()
	for k := 0; k < frames; k++ {
		if err := m.step(); err != nil {
			return r, err
		}
		frame, err := m.render()
		if err != nil {
			return r, fmt.Errorf("rendering frame %d: %w", k, err)
		}
		if rec != nil {
			if err := rec.AddFrame(frame, fmt.Sprintf("%d  %s", k, m.panel)); err != nil {
				return r, err
			}
		}
		r.maxSpeed = append(r.maxSpeed, m.sim.Velocity().MaxSpeed())
		r.mass = append(r.mass, m.mass())
		r.stepMS = append(r.stepMS, m.lastStep.Seconds()*1000)
	}
	r.elapsed = time.Since(start)
	return r, nil
}

// printReport writes a summary table and per-frame plots.
func printReport(w io.Writer, r report) {
	n := len(r.maxSpeed)
	if n == 0 {
		fmt.Fprintln(w, "no frames simulated")
		return
	}
	fmt.Fprintf(w, "%d frames in %v (%.1f frames/s)\n", n, r.elapsed.Round(time.Millisecond), float64(n)/r.elapsed.Seconds())
	fmt.Fprintf(w, "%-10s %10s %10s %10s %10s\n", "series", "min", "mean", "max", "stddev")
	for _, s := range []struct {
		name string
		data []float64
	}{
		{"max|v|", r.maxSpeed},
		{"mass", r.mass},
		{"step ms", r.stepMS},
	} {
		mean, std := stat.MeanStdDev(s.data, nil)
		if n < 2 {
			std = 0
		}
		fmt.Fprintf(w, "%-10s %10.4f %10.4f %10.4f %10.4f\n", s.name, floats.Min(s.data), mean, floats.Max(s.data), std)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(r.maxSpeed, asciigraph.Height(plotHeight), asciigraph.Width(plotWidth), asciigraph.Caption("max |v| per frame")))
	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(r.mass, asciigraph.Height(plotHeight), asciigraph.Width(plotWidth), asciigraph.Caption("smoke mass per frame")))
}
