package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutline_BoundingBox(t *testing.T) {
	o := Outline{{X: 10, Y: 5}, {X: -3, Y: 20}, {X: 7, Y: -2}}
	min, max := o.BoundingBox()
	assert.Equal(t, Point2D{X: -3, Y: -2}, min)
	assert.Equal(t, Point2D{X: 10, Y: 20}, max)
}

func TestOutline_BoundingBox_Empty(t *testing.T) {
	min, max := Outline{}.BoundingBox()
	assert.Equal(t, Point2D{}, min)
	assert.Equal(t, Point2D{}, max)
}

func TestOutline_Translate(t *testing.T) {
	o := Outline{{X: 1, Y: 2}, {X: 3, Y: 4}}
	moved := o.Translate(10, -1)
	assert.Equal(t, Outline{{X: 11, Y: 1}, {X: 13, Y: 3}}, moved)
	// Original untouched.
	assert.Equal(t, Outline{{X: 1, Y: 2}, {X: 3, Y: 4}}, o)
}

func TestBBox_Dimensions(t *testing.T) {
	b := BBox{MinX: 2, MinY: -1, MaxX: 12, MaxY: 5}
	assert.Equal(t, 10.0, b.Width())
	assert.Equal(t, 6.0, b.Height())
}

func TestBBox_Union(t *testing.T) {
	a := BBox{MinX: 0, MinY: 0, MaxX: 5, MaxY: 5}
	b := BBox{MinX: 3, MinY: -2, MaxX: 10, MaxY: 4}
	u := a.Union(b)
	assert.Equal(t, BBox{MinX: 0, MinY: -2, MaxX: 10, MaxY: 5}, u)
}

func TestBBox_Translate(t *testing.T) {
	b := BBox{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}
	assert.Equal(t, BBox{MinX: 3, MinY: 0, MaxX: 4, MaxY: 1}, b.Translate(2, -1))
}

func TestRound3(t *testing.T) {
	assert.InDelta(t, 3.0, Round3(3.0004), 1e-12)
	assert.InDelta(t, 3.001, Round3(3.0006), 1e-12)
	assert.InDelta(t, -3.001, Round3(-3.0006), 1e-12)
	assert.InDelta(t, 6.5, Round3(6.5), 1e-12)
}

func TestPartKey_CaseAndRoundingInsensitive(t *testing.T) {
	// Case differences and sub-millidecimal thickness differences share
	// a key.
	assert.Equal(t, PartKey("PlateX.dwg", 3.0), PartKey("platex.DWG", 3.0004))

	// A difference in the 3rd decimal is a different key.
	assert.NotEqual(t, PartKey("plateX.dwg", 3.0), PartKey("plateX.dwg", 3.01))
	assert.NotEqual(t, PartKey("plateX.dwg", 3.0), PartKey("plateY.dwg", 3.0))
}

func TestFormatThickness_TrimsTrailingZeros(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{6.5, "6.5"},
		{3.0, "3"},
		{2.125, "2.125"},
		{2.1000, "2.1"},
		{0.5, "0.5"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatThickness(tc.in), "thickness %v", tc.in)
	}
}

func TestNestSettings_UsableArea(t *testing.T) {
	s := NestSettings{SheetWidth: 500, SheetHeight: 400, SheetMargin: 5}
	assert.Equal(t, 490.0, s.UsableWidth())
	assert.Equal(t, 390.0, s.UsableHeight())
}

func TestNestedLayout_Efficiency(t *testing.T) {
	l := NestedLayout{
		Sheets: []Sheet{{Index: 0, Width: 100, Height: 100}},
		Placements: []PlacedInstance{
			{SheetIndex: 0, Width: 50, Height: 50},
			{SheetIndex: 0, Width: 25, Height: 100},
		},
	}
	assert.InDelta(t, 50.0, l.Efficiency(0), 1e-9)
	assert.InDelta(t, 50.0, l.TotalEfficiency(), 1e-9)
	assert.Equal(t, 0.0, l.Efficiency(3))
}
