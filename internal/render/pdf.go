package render

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/msepahkar/platenest/internal/model"
)

// partColor is an RGB fill color for a placed plate on the report.
type partColor struct {
	R, G, B int
}

var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// WritePDF generates a PDF report of the nested layout: one page per
// sheet with a scaled layout diagram, followed by a summary page.
func WritePDF(path string, layout model.NestedLayout) error {
	if len(layout.Sheets) == 0 {
		return fmt.Errorf("render: no sheets to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, sheet := range layout.Sheets {
		pdf.AddPage()
		renderSheetPage(pdf, sheet, layout)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, layout)

	return pdf.OutputFileAndClose(path)
}

// renderSheetPage draws one sheet's layout on the current page.
func renderSheetPage(pdf *fpdf.Fpdf, sheet model.Sheet, layout model.NestedLayout) {
	placements := layout.SheetPlacements(sheet.Index)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d (%.0f x %.0f mm)", sheet.Index+1, sheet.Width, sheet.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Plates: %d | Used area: %.0f mm2 | Efficiency: %.1f%%",
		len(placements), layout.UsedArea(sheet.Index), layout.Efficiency(sheet.Index))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/sheet.Width, drawHeight/sheet.Height)
	canvasW := sheet.Width * scale
	canvasH := sheet.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Sheet background.
	pdf.SetFillColor(225, 225, 225)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, p := range placements {
		col := partColors[i%len(partColors)]
		pw := p.Width * scale
		ph := p.Height * scale
		px := offsetX + p.CellX*scale
		// PDF pages are Y-down, drawings are Y-up.
		py := offsetY + (sheet.Height-p.CellY-p.Height)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		label := fmt.Sprintf("%.0fx%.0f", p.Width, p.Height)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(0, 0, 0)
		if pdf.GetStringWidth(label) < pw-1 && ph > 4 {
			pdf.SetXY(px, py+ph/2-1.5)
			pdf.CellFormat(pw, 3, label, "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage draws overall totals and a per-plate placement
// table.
func renderSummaryPage(pdf *fpdf.Fpdf, layout model.NestedLayout) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Nesting Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight+2)
	totals := fmt.Sprintf("Sheets used: %d | Instances placed: %d | Overall efficiency: %.1f%%",
		len(layout.Sheets), len(layout.Placements), layout.TotalEfficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 6, totals, "", 1, "L", false, 0, "")

	// Placement table.
	y := marginTop + headerHeight + 14
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(90, 6, "Plate", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Size (mm)", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Sheet", "B", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Position (mm)", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, p := range layout.Placements {
		if pdf.GetY() > pageHeight-marginBottom-6 {
			pdf.AddPage()
			pdf.SetY(marginTop)
		}
		pdf.SetX(marginLeft)
		pdf.CellFormat(90, 5, p.GroupName, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 5, fmt.Sprintf("%.0f x %.0f", p.Width, p.Height), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, fmt.Sprintf("%d", p.SheetIndex+1), "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 5, fmt.Sprintf("(%.0f, %.0f)", p.CellX, p.CellY), "", 1, "L", false, 0, "")
	}
}
