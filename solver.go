package main

import (
	"log"

	"smokecam/internal/fluid"
	"smokecam/internal/solver"
)

// newSolver picks the OpenCL solver when asked for and available, falling
// back to the CPU. The returned function releases the solver.
func newSolver(cfg solver.Config, useOpenCL bool) (fluid.Solver, func()) {
	if useOpenCL {
		s, err := solver.NewOpenCL(cfg)
		if err == nil {
			log.Printf("OpenCL solver enabled (device: %s)", s.DeviceName())
			return s, s.Close
		}
		log.Printf("OpenCL initialization failed, using CPU solver: %v", err)
	}
	s := solver.NewCPU(cfg)
	log.Printf("CPU solver enabled (%d pressure iterations)", s.Config().Iterations)
	return s, func() {}
}

func solverConfig(cfg Config) solver.Config {
	return solver.Config{
		Iterations:  cfg.Iterations,
		Viscosity:   cfg.Viscosity,
		Dissipation: cfg.Dissipation,
	}
}
