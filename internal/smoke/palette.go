package smoke

import (
	"fmt"
	"sort"

	"github.com/mazznoer/colorgrad"
)

var palettes = map[string]func() colorgrad.Gradient{
	"rainbow": colorgrad.Rainbow,
	"sinebow": colorgrad.Sinebow,
	"turbo":   colorgrad.Turbo,
	"viridis": colorgrad.Viridis,
	"warm":    colorgrad.Warm,
	"cool":    colorgrad.Cool,
	"white":   white,
}

func white() colorgrad.Gradient {
	g, err := colorgrad.NewGradient().HtmlColors("#c8c8c8", "#ffffff").Build()
	if err != nil {
		panic(err)
	}
	return g
}

// Palette returns the named stream palette.
func Palette(name string) (colorgrad.Gradient, error) {
	p, ok := palettes[name]
	if !ok {
		var none colorgrad.Gradient
		return none, fmt.Errorf("unknown palette %q (have %v)", name, PaletteNames())
	}
	return p(), nil
}

// PaletteNames lists the accepted palette names in order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
