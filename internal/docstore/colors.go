package docstore

import "math/rand"

// Color is an RGB display color for a geometry group.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// palette mirrors the color scheme used for placed parts in the PDF
// report.
var palette = []Color{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// ColorStrategy hands out display colors for newly created groups.
// Implementations must be deterministic for a given seed so test output
// is reproducible.
type ColorStrategy interface {
	Next() Color
}

// paletteColors cycles through a seeded random permutation of the
// palette.
type paletteColors struct {
	order []Color
	pos   int
}

// NewPaletteColors returns a seeded palette-based color strategy.
func NewPaletteColors(seed int64) ColorStrategy {
	rng := rand.New(rand.NewSource(seed))
	order := make([]Color, len(palette))
	copy(order, palette)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return &paletteColors{order: order}
}

func (p *paletteColors) Next() Color {
	c := p.order[p.pos%len(p.order)]
	p.pos++
	return c
}
