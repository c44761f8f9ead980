// Package model defines the core data types shared by the plate
// aggregation and nesting pipeline: part records, the deduplicated
// part catalog, 2D geometry primitives, and the nesting result types.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a polygon as a sequence of 2D points.
// A closed outline implicitly connects the last point back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// BBox is an axis-aligned bounding box in drawing coordinates.
type BBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Union returns the smallest box containing both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Translate shifts the box by dx, dy.
func (b BBox) Translate(dx, dy float64) BBox {
	return BBox{
		MinX: b.MinX + dx,
		MinY: b.MinY + dy,
		MaxX: b.MaxX + dx,
		MaxY: b.MaxY + dy,
	}
}

// PartRecord is one parsed row of a job folder's part-record file.
// Records are immutable once parsed.
type PartRecord struct {
	FileName     string
	ThicknessMm  float64
	Quantity     int
	SourceFolder string
	SourcePath   string
}

// UniquePart is a deduplicated (fileName, thickness) identity with the
// aggregated quantity across all source jobs. FileName, ThicknessMm and
// the representative source fields come from the first-seen record for
// the key and are never overwritten by later records.
type UniquePart struct {
	FileName      string
	ThicknessMm   float64
	TotalQuantity int
	SourceFolder  string
	SourcePath    string
}

// Key returns the catalog identity of the part: the lowercased file name
// combined with the thickness rounded to 3 decimals.
func (p UniquePart) Key() string {
	return PartKey(p.FileName, p.ThicknessMm)
}

// PartKey builds the catalog key for a file name and thickness. Thickness
// values are rounded half away from zero to 3 decimals and compared as
// fixed 3-decimal strings, so 3.0 and 3.0004 share a key while 3.0 and
// 3.01 do not.
func PartKey(fileName string, thicknessMm float64) string {
	return fmt.Sprintf("%s|%.3f", strings.ToLower(fileName), Round3(thicknessMm))
}

// Round3 rounds to 3 decimals, half away from zero.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// FormatThickness renders a thickness with at most 3 decimals and
// trailing zeros trimmed ("6.500" -> "6.5", "3.000" -> "3").
func FormatThickness(v float64) string {
	return strconv.FormatFloat(Round3(v), 'f', -1, 64)
}

// NestSettings holds the layout and nesting configuration.
type NestSettings struct {
	SheetWidth  float64 `json:"sheet_width"`  // Stock sheet width in mm
	SheetHeight float64 `json:"sheet_height"` // Stock sheet height in mm
	SheetMargin float64 `json:"sheet_margin"` // Clearance from sheet edge in mm
	PartGap     float64 `json:"part_gap"`     // Spacing between adjacent plates in mm
	SheetGap    float64 `json:"sheet_gap"`    // Visual spacing between sheet rectangles (cosmetic)

	// Consolidated-drawing layout
	ColumnMargin float64 `json:"column_margin"` // Spacing between part columns in mm

	// Label sizing heuristics; no font metrics are available at this layer.
	TextHeight      float64 `json:"text_height"`
	TextWidthFactor float64 `json:"text_width_factor"`
}

// DefaultSettings returns the fixed default configuration.
func DefaultSettings() NestSettings {
	return NestSettings{
		SheetWidth:      3000.0,
		SheetHeight:     1500.0,
		SheetMargin:     10.0,
		PartGap:         10.0,
		SheetGap:        200.0,
		ColumnMargin:    30.0,
		TextHeight:      10.0,
		TextWidthFactor: 0.6,
	}
}

// UsableWidth returns the sheet width minus both edge margins.
func (s NestSettings) UsableWidth() float64 { return s.SheetWidth - 2*s.SheetMargin }

// UsableHeight returns the sheet height minus both edge margins.
func (s NestSettings) UsableHeight() float64 { return s.SheetHeight - 2*s.SheetMargin }

// Sheet is one stock sheet consumed by a nesting run. The cursor fields
// are mutated only by the nesting engine while the sheet is current and
// are frozen once the engine moves past it.
type Sheet struct {
	Index     int     `json:"index"`
	OriginX   float64 `json:"origin_x"`
	OriginY   float64 `json:"origin_y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	CursorX   float64 `json:"-"`
	CursorY   float64 `json:"-"`
	RowHeight float64 `json:"-"`
}

// PlacedInstance is one committed placement of a geometry group copy.
// InsertX/InsertY are the drawing-space insertion point, already
// corrected so the group's bounding box (not its local origin) lands at
// the intended cell. CellX/CellY are the sheet-local bounding-box
// minimum of the placed copy.
type PlacedInstance struct {
	GroupName  string  `json:"group"`
	SheetIndex int     `json:"sheet"`
	InsertX    float64 `json:"insert_x"`
	InsertY    float64 `json:"insert_y"`
	CellX      float64 `json:"cell_x"`
	CellY      float64 `json:"cell_y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// NestedLayout is the terminal artifact of a nesting run: the ordered
// sheets plus every placed instance.
type NestedLayout struct {
	Sheets     []Sheet          `json:"sheets"`
	Placements []PlacedInstance `json:"placements"`
}

// SheetPlacements returns the placements assigned to the given sheet.
func (l NestedLayout) SheetPlacements(sheetIndex int) []PlacedInstance {
	var out []PlacedInstance
	for _, p := range l.Placements {
		if p.SheetIndex == sheetIndex {
			out = append(out, p)
		}
	}
	return out
}

// UsedArea returns the total bounding-box area of all placements on a sheet.
func (l NestedLayout) UsedArea(sheetIndex int) float64 {
	var total float64
	for _, p := range l.Placements {
		if p.SheetIndex == sheetIndex {
			total += p.Width * p.Height
		}
	}
	return total
}

// Efficiency returns the material usage percentage for a sheet.
func (l NestedLayout) Efficiency(sheetIndex int) float64 {
	if sheetIndex < 0 || sheetIndex >= len(l.Sheets) {
		return 0
	}
	s := l.Sheets[sheetIndex]
	total := s.Width * s.Height
	if total == 0 {
		return 0
	}
	return l.UsedArea(sheetIndex) / total * 100.0
}

// TotalEfficiency returns the overall material usage percentage.
func (l NestedLayout) TotalEfficiency() float64 {
	var used, total float64
	for _, s := range l.Sheets {
		used += l.UsedArea(s.Index)
		total += s.Width * s.Height
	}
	if total == 0 {
		return 0
	}
	return used / total * 100.0
}
