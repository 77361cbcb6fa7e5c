package main

import "flag"

// Command-line flags. Flags that mirror a Config field override the value
// from -config only when given explicitly.
var (
	// configFlag names a JSON file with Config fields.
	configFlag = flag.String("config", "", "path to a JSON configuration file")

	widthFlag      = flag.Int("width", defaultConfig.Width, "camera width in pixels")
	heightFlag     = flag.Int("height", defaultConfig.Height, "camera height in pixels")
	multiplierFlag = flag.Float64("multiplier", defaultConfig.Multiplier, "simulation resolution as a fraction of the camera size")
	directionFlag  = flag.Int("direction", defaultConfig.Direction, "initial flow direction: 0 +x, 1 +y, 2 -x, 3 -y")
	speedFlag      = flag.Float64("speed", defaultConfig.Speed, "initial inflow speed")
	paletteFlag    = flag.String("palette", defaultConfig.Palette, "smoke stream palette")
	seedFlag       = flag.Int64("seed", defaultConfig.Seed, "seed for the synthetic camera")

	// imageFlag replaces the synthetic camera with a still image.
	imageFlag = flag.String("image", "", "use this image file as the camera frame")

	// maskFlag supplies the foreground mask for -image. Without it the mask
	// is taken from the image luminance.
	maskFlag = flag.String("mask", "", "mask image for -image")

	// openCLFlag selects the OpenCL solver when the binary was built with it.
	openCLFlag = flag.Bool("opencl", false, "run the solver on OpenCL (needs -tags opencl)")

	// headlessFlag runs without a window and prints a report.
	headlessFlag = flag.Bool("headless", false, "run without a window and print a summary")

	framesFlag = flag.Int("frames", 300, "frames to simulate in headless mode")

	// recordFlag writes every rendered frame to an MJPEG AVI file.
	recordFlag = flag.String("record", "", "record frames to this AVI file")

	// cpuProfileFlag writes a pprof CPU profile for the whole run.
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")

	// debugFlag enables the FPS and controls overlay.
	debugFlag = flag.Bool("debug", false, "show FPS, solver time, and controls overlay")
)

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *widthFlag
		case "height":
			cfg.Height = *heightFlag
		case "multiplier":
			cfg.Multiplier = *multiplierFlag
		case "direction":
			cfg.Direction = *directionFlag
		case "speed":
			cfg.Speed = *speedFlag
		case "palette":
			cfg.Palette = *paletteFlag
		case "seed":
			cfg.Seed = *seedFlag
		}
	})
}
