package view

import (
	"image/color"
	"math"

	"github.com/icza/gox/imagex/colorx"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DefaultPalette is a qualitative palette used when no "palette" option is
// given. Colors repeat when there are more categories than entries.
var DefaultPalette = []string{
	"#4c72b0", "#dd8452", "#55a868", "#c44e52", "#8172b3",
	"#937860", "#da8bc3", "#8c8c8c", "#ccb974", "#64b5cd",
}

// HeatPalette is the default sequential palette for heat grids.
var HeatPalette = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}

// Palette assigns colors to category labels in order.
type Palette []color.RGBA

// ParsePalette parses hex color codes such as "#ff0000".
func ParsePalette(codes []string) (Palette, error) {
	if len(codes) == 0 {
		return nil, errors.Wrap(ErrInvalidOption, "palette is empty")
	}

	out := make(Palette, 0, len(codes))
	for _, code := range codes {
		c, err := colorx.ParseHexColor(code)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidOption, "palette color %q: %v", code, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// At returns the i'th color, cycling.
func (p Palette) At(i int) color.RGBA {
	return p[i%len(p)]
}

// Chart returns the i'th color for a go-chart style.
func (p Palette) Chart(i int) drawing.Color {
	c := p.At(i)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Shade interpolates linearly along the palette; t is clamped to [0, 1].
func (p Palette) Shade(t float64) drawing.Color {
	if len(p) == 1 || !(t > 0) {
		return p.Chart(0)
	}
	if t >= 1 {
		return p.Chart(len(p) - 1)
	}

	x := t * float64(len(p)-1)
	i := int(x)
	f := x - float64(i)
	a, b := p[i], p[i+1]
	mix := func(u, v uint8) uint8 {
		return uint8(math.Round(float64(u) + f*(float64(v)-float64(u))))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func paletteOption(opts Options) (Palette, error) {
	return ParsePalette(opts.Strings("palette", DefaultPalette))
}

func heatPaletteOption(opts Options) (Palette, error) {
	return ParsePalette(opts.Strings("palette", HeatPalette))
}
