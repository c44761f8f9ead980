// Package render turns a nested layout back into drawing artifacts: the
// nested output document, a printable PDF report, and QR-coded part
// labels.
package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/msepahkar/platenest/internal/docstore"
	"github.com/msepahkar/platenest/internal/model"
)

// NestedSuffix is appended to the source drawing's base name to form
// the nested output name.
const NestedSuffix = "_nested"

// Renderer translates a NestedLayout into document-store calls. Pure
// translation: all decisions were made by the engine.
type Renderer struct {
	Settings model.NestSettings
}

// New returns a renderer with the given settings.
func New(settings model.NestSettings) *Renderer {
	return &Renderer{Settings: settings}
}

// Render builds the nested output document: one group definition per
// placed plate (copied from the source document), one insert per placed
// instance, plus the four boundary edges and a "SHEET n" label for each
// sheet. The document is built fully in memory; the caller saves it in
// one step.
func (r *Renderer) Render(src *docstore.Document, layout model.NestedLayout) (*docstore.Document, error) {
	out := docstore.NewDocument()

	for _, p := range layout.Placements {
		if _, ok := out.Group(p.GroupName); ok {
			continue
		}
		srcGroup, ok := src.Group(p.GroupName)
		if !ok {
			return nil, fmt.Errorf("render: layout references unknown group %q", p.GroupName)
		}
		g, err := out.NewGroup(srcGroup.Name, srcGroup.Color)
		if err != nil {
			return nil, err
		}
		out.CloneEntities(g, srcGroup.Entities)
	}

	for _, p := range layout.Placements {
		if err := out.AddInsert(p.GroupName, p.InsertX, p.InsertY); err != nil {
			return nil, err
		}
	}

	for _, sheet := range layout.Sheets {
		r.drawSheet(out, sheet)
	}

	return out, nil
}

// drawSheet adds the four boundary edges and the sheet label.
func (r *Renderer) drawSheet(doc *docstore.Document, sheet model.Sheet) {
	x0, y0 := sheet.OriginX, sheet.OriginY
	x1, y1 := sheet.OriginX+sheet.Width, sheet.OriginY+sheet.Height

	doc.AddLine(model.Point2D{X: x0, Y: y0}, model.Point2D{X: x1, Y: y0})
	doc.AddLine(model.Point2D{X: x1, Y: y0}, model.Point2D{X: x1, Y: y1})
	doc.AddLine(model.Point2D{X: x1, Y: y1}, model.Point2D{X: x0, Y: y1})
	doc.AddLine(model.Point2D{X: x0, Y: y1}, model.Point2D{X: x0, Y: y0})

	// Label near the top-left usable corner.
	th := r.Settings.TextHeight
	doc.AddText(
		fmt.Sprintf("SHEET %d", sheet.Index+1),
		model.Point2D{X: x0 + r.Settings.SheetMargin, Y: y1 - r.Settings.SheetMargin - th},
		th,
	)
}

// OutputName derives the nested output path from the source drawing
// path by appending the nested suffix before the extension.
func OutputName(srcPath string) string {
	ext := filepath.Ext(srcPath)
	base := strings.TrimSuffix(srcPath, ext)
	return base + NestedSuffix + ext
}
