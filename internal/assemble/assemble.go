// Package assemble builds one consolidated drawing per material
// thickness: one geometry-group clone per unique part, laid out in
// labeled columns along the X axis.
package assemble

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/msepahkar/platenest/internal/docstore"
	"github.com/msepahkar/platenest/internal/model"
)

// labelGap is the fixed vertical spacing between the block baseline and
// the label lines, and between stacked label lines.
const labelGap = 5.0

// ThicknessGroup is the slice of the catalog sharing one thickness key.
type ThicknessGroup struct {
	Thickness float64
	Parts     []model.UniquePart
}

// GroupByThickness splits a sorted catalog into per-thickness groups,
// preserving the catalog order within each group.
func GroupByThickness(parts []model.UniquePart) []ThicknessGroup {
	var groups []ThicknessGroup
	for _, p := range parts {
		key := model.Round3(p.ThicknessMm)
		if len(groups) == 0 || groups[len(groups)-1].Thickness != key {
			groups = append(groups, ThicknessGroup{Thickness: key})
		}
		g := &groups[len(groups)-1]
		g.Parts = append(g.Parts, p)
	}
	return groups
}

// Stats counts the outcome of assembling one thickness group.
type Stats struct {
	PartsPlaced  int
	PartsSkipped int // source unavailable or no measurable geometry
}

// Assembler builds consolidated drawings. Open loads a part's source
// drawing and defaults to the extension-dispatching document store;
// tests inject their own loader.
type Assembler struct {
	Settings model.NestSettings
	Colors   docstore.ColorStrategy
	Open     func(path string) (*docstore.Document, error)

	// NewGroupName builds the clone group name for a part quantity. The
	// default encodes the aggregated quantity as a _Q suffix so the
	// nesting stage recovers it from the name.
	NewGroupName func(quantity int) string
}

// New returns an assembler with the default store loader and a seeded
// color strategy.
func New(settings model.NestSettings) *Assembler {
	return &Assembler{
		Settings: settings,
		Colors:   docstore.NewPaletteColors(1),
		Open:     docstore.OpenPath,
	}
}

func (a *Assembler) groupName(quantity int) string {
	if a.NewGroupName != nil {
		return a.NewGroupName(quantity)
	}
	return fmt.Sprintf("%s%s_Q%d", docstore.PlateGroupPrefix, uuid.New().String()[:8], quantity)
}

func (a *Assembler) colors() docstore.ColorStrategy {
	if a.Colors == nil {
		a.Colors = docstore.NewPaletteColors(1)
	}
	return a.Colors
}

// textWidth estimates the rendered width of a label line. No font
// metrics are available at this layer; the character-count heuristic
// matches the renderer's text sizing.
func (a *Assembler) textWidth(s string) float64 {
	return float64(len(s)) * a.Settings.TextHeight * a.Settings.TextWidthFactor
}

// Assemble builds the consolidated document for one thickness group.
// Parts whose source drawing cannot be opened, or whose geometry yields
// no bounding box, are skipped; the rest of the group still assembles.
func (a *Assembler) Assemble(group ThicknessGroup) (*docstore.Document, Stats) {
	doc := docstore.NewDocument()
	stats := Stats{}
	cursor := 0.0

	for _, part := range group.Parts {
		src, err := a.Open(part.SourcePath)
		if err != nil {
			stats.PartsSkipped++
			continue
		}
		entities := src.FlattenedEntities()
		if len(entities) == 0 {
			stats.PartsSkipped++
			continue
		}

		name := a.groupName(part.TotalQuantity)
		g, err := doc.NewGroup(name, a.colors().Next())
		if err != nil {
			stats.PartsSkipped++
			continue
		}
		doc.CloneEntities(g, entities)

		bounds, ok := doc.GroupBounds(name)
		if !ok || bounds.Width() <= 0 || bounds.Height() <= 0 {
			doc.RemoveGroup(name)
			stats.PartsSkipped++
			continue
		}

		plateLabel := "Plate: " + part.FileName
		qtyLabel := fmt.Sprintf("Qty: %d", part.TotalQuantity)
		textW := math.Max(a.textWidth(plateLabel), a.textWidth(qtyLabel))
		colW := math.Max(bounds.Width(), textW)

		// Center the block horizontally in its column and align its
		// bottom edge to the Y=0 baseline.
		blockX := cursor + (colW-bounds.Width())/2
		if err := doc.AddInsert(name, blockX-bounds.MinX, -bounds.MinY); err != nil {
			doc.RemoveGroup(name)
			stats.PartsSkipped++
			continue
		}

		centerX := cursor + colW/2
		th := a.Settings.TextHeight
		y1 := -(labelGap + th)
		y2 := y1 - (labelGap + th)
		doc.AddText(plateLabel, model.Point2D{X: centerX - a.textWidth(plateLabel)/2, Y: y1}, th)
		doc.AddText(qtyLabel, model.Point2D{X: centerX - a.textWidth(qtyLabel)/2, Y: y2}, th)

		cursor += colW + a.Settings.ColumnMargin
		stats.PartsPlaced++
	}

	return doc, stats
}

// OutputName derives the consolidated-drawing file name from a
// thickness value, with decimal separators replaced by underscores
// (thickness 6.5 -> "plates_6_5<ext>").
func OutputName(thickness float64, ext string) string {
	sanitized := strings.NewReplacer(".", "_", ",", "_").Replace(model.FormatThickness(thickness))
	return "plates_" + sanitized + ext
}
