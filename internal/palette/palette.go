// Package palette maps particle type IDs to display colors.
package palette

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Defaults are the colors of the first five type IDs.
var Defaults = map[int]color.RGBA{
	1: {255, 255, 0, 255},   // yellow
	2: {255, 0, 0, 255},     // red
	3: {0, 255, 0, 255},     // green
	4: {192, 192, 192, 255}, // light gray
	5: {0, 255, 255, 255},   // cyan
}

// Palette is a type ID -> color table. IDs without an entry get a hue spread
// evenly over the color wheel. ID 0 is an empty cell and has no color.
type Palette struct {
	colors map[int]color.RGBA
	spread int
}

// New creates a palette holding the defaults, spreading unknown IDs over
// n hues.
func New(n int) *Palette {
	if n < 1 {
		n = 1
	}
	p := &Palette{colors: make(map[int]color.RGBA, len(Defaults)), spread: n}
	for id, c := range Defaults {
		p.colors[id] = c
	}
	return p
}

// Set assigns a "#rrggbb" color to id.
func (p *Palette) Set(id int, hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("palette: type %d: %w", id, err)
	}
	r, g, b := c.RGB255()
	p.colors[id] = color.RGBA{r, g, b, 255}
	return nil
}

// Color returns the color for id.
func (p *Palette) Color(id int) color.RGBA {
	if id == 0 {
		return color.RGBA{}
	}
	if c, ok := p.colors[id]; ok {
		return c
	}
	// Simple hue-based colors
	h := float64((id-1)%p.spread) / float64(p.spread) * 360
	r, g, b := colorful.Hsv(h, 1, 1).RGB255()
	return color.RGBA{r, g, b, 255}
}
