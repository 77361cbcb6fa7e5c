package main

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"sync"
)

// cpuProfile is a running pprof CPU profile.
type cpuProfile struct {
	path string
	f    *os.File
	once sync.Once
}

func startCPUProfile(path string) (*cpuProfile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}
	log.Printf("CPU profile recording to %s", path)
	return &cpuProfile{path: path, f: f}, nil
}

// Stop ends the profile and closes its file. Only the first call on a
// non-nil profile does anything.
func (p *cpuProfile) Stop() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		pprof.StopCPUProfile()
		if err := p.f.Close(); err != nil {
			log.Printf("Closing CPU profile failed: %v", err)
			return
		}
		log.Printf("CPU profile written to %s", p.path)
	})
}
