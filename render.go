package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Draw shows the last rendered frame and the optional overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.frame != nil {
		screen.WritePixels(g.frame.Pix)
	}

	var lines []string
	if g.debug {
		lines = append(lines,
			fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()),
			fmt.Sprintf("Grid: %v  Sim: %.2f ms", g.m.sim.Shape(), g.m.lastStep.Seconds()*1000),
		)
		lines = append(lines, g.m.panel.Lines()...)
		lines = append(lines, fmt.Sprintf("Mask: %t (k)  Walls: %t (b)", g.m.opts.ShowMask, g.m.opts.MaskVelocity))
	}
	if g.flash != "" && time.Now().Before(g.flashUntil) {
		lines = append(lines, g.flash)
	}
	if len(lines) > 0 {
		ebitenutil.DebugPrint(screen, strings.Join(lines, "\n"))
	}
}
