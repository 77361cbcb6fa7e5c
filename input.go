package main

import (
	"log"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// handleInput applies the keys typed since the last tick. Escape ends the
// game; F1 toggles the overlay; c copies the status line.
func (g *Game) handleInput() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}

	g.runes = ebiten.AppendInputChars(g.runes[:0])
	for _, r := range g.runes {
		if r == 'c' {
			g.copyStatus()
			continue
		}
		if g.m.handleRune(r) {
			g.showMessage(g.m.panel.String())
		}
	}
	return nil
}

func (g *Game) copyStatus() {
	if err := clipboard.WriteAll(g.m.status()); err != nil {
		log.Printf("Copy to clipboard failed: %v", err)
		g.showMessage("clipboard unavailable")
		return
	}
	g.showMessage("status copied")
}
