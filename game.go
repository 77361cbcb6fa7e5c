package main

import (
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"smokecam/internal/record"
)

var _ ebiten.Game = (*Game)(nil)

// Game is the ebiten front end of a mirror.
type Game struct {
	m     *mirror
	rec   *record.Recorder
	frame *image.RGBA
	debug bool

	runes      []rune
	flash      string
	flashUntil time.Time
	lastLog    time.Time
}

func newGame(m *mirror, rec *record.Recorder, debug bool) *Game {
	return &Game{m: m, rec: rec, debug: debug, lastLog: time.Now()}
}

// Update reads input, steps the simulation, and renders the next frame.
func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return err
	}
	if err := g.m.step(); err != nil {
		return err
	}
	frame, err := g.m.render()
	if err != nil {
		return err
	}
	g.frame = frame

	if g.rec != nil {
		if err := g.rec.AddFrame(frame, g.m.panel.String()); err != nil {
			return err
		}
	}
	if now := time.Now(); now.Sub(g.lastLog) >= statusLogInterval {
		g.lastLog = now
		log.Print(g.m.status())
	}
	return nil
}

// showMessage displays msg in the overlay for a short while.
func (g *Game) showMessage(msg string) {
	g.flash = msg
	g.flashUntil = time.Now().Add(statusFlashTime)
}

// Layout reports the camera size as the logical screen.
func (g *Game) Layout(_, _ int) (int, int) {
	size := g.m.cam.Size()
	return size.X, size.Y
}
