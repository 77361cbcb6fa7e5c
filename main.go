package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"smokecam/internal/camera"
	"smokecam/internal/record"
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("smokecam: %v", err)
	}
}

func run() error {
	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var prof *cpuProfile
	if *cpuProfileFlag != "" {
		if prof, err = startCPUProfile(*cpuProfileFlag); err != nil {
			return err
		}
		defer prof.Stop()
	}

	cam, err := newCamera(cfg, *imageFlag, *maskFlag)
	if err != nil {
		return err
	}
	slv, closeSolver := newSolver(solverConfig(cfg), *openCLFlag)
	defer closeSolver()

	m, err := newMirror(cfg, cam, slv)
	if err != nil {
		return err
	}
	log.Printf("Camera %v, grid %v, palette %s", cam.Size(), m.sim.Shape(), cfg.Palette)

	var rec *record.Recorder
	if *recordFlag != "" {
		rec, err = record.Create(*recordFlag, cam.Size(), recordFPS, record.DefaultQuality)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Printf("Closing recording failed: %v", err)
				return
			}
			log.Printf("Wrote %d frames to %s", rec.Frames(), rec.Path())
		}()
	}

	if *headlessFlag {
		r, err := runHeadless(m, *framesFlag, rec)
		prof.Stop()
		if err != nil {
			return err
		}
		printReport(os.Stdout, r)
		return nil
	}

	size := cam.Size()
	ebiten.SetWindowSize(size.X*windowScale, size.Y*windowScale)
	ebiten.SetWindowTitle("Smoke Mirror")
	ebiten.SetTPS(defaultTPS)
	return ebiten.RunGame(newGame(m, rec, *debugFlag))
}

// newCamera opens the still image at path, or the synthetic scene when path
// is empty.
func newCamera(cfg Config, path, maskPath string) (camera.Source, error) {
	size := image.Pt(cfg.Width, cfg.Height)
	if path != "" {
		still, err := camera.NewStill(path, maskPath, size, maskThreshold)
		if err != nil {
			return nil, err
		}
		return still, nil
	}
	synthetic, err := camera.NewSynthetic(size, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return synthetic, nil
}
