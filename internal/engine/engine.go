// Package engine implements the shelf-nesting algorithm: it expands the
// unique-plate catalog by quantity and packs the instances onto
// fixed-size stock sheets in greedy left-to-right rows.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/msepahkar/platenest/internal/extract"
	"github.com/msepahkar/platenest/internal/model"
)

// fitEps absorbs floating-point noise in fit comparisons.
const fitEps = 1e-6

// ErrNothingToNest reports that the plate catalog expands to zero
// instances.
var ErrNothingToNest = errors.New("engine: nothing to nest")

// ConfigurationError reports invalid sheet dimensions. Fatal: the run
// aborts before any placement.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "engine: invalid configuration: " + e.Reason
}

// FitError reports a plate whose bounding box exceeds the usable sheet
// area. Fatal: the whole nesting run aborts and no partial layout is
// produced.
type FitError struct {
	GroupName    string
	Width        float64
	Height       float64
	UsableWidth  float64
	UsableHeight float64
}

func (e *FitError) Error() string {
	return fmt.Sprintf("engine: plate %s (%.1f x %.1f mm) exceeds usable sheet area (%.1f x %.1f mm)",
		e.GroupName, e.Width, e.Height, e.UsableWidth, e.UsableHeight)
}

// Engine runs a single synchronous nesting pass. The optional Progress
// callback fires after each successful placement; it is a side-channel
// notification only and does not affect the algorithm.
type Engine struct {
	Settings model.NestSettings
	Progress func(placed, total int)
}

// New returns an engine with the given settings.
func New(settings model.NestSettings) *Engine {
	return &Engine{Settings: settings}
}

// instance is one physical copy awaiting placement.
type instance struct {
	plate extract.Plate
}

// Nest validates the catalog against the sheet dimensions and packs
// every instance. Validation runs before any placement: on failure no
// partial layout exists.
func (e *Engine) Nest(plates []extract.Plate) (model.NestedLayout, error) {
	s := e.Settings

	if s.SheetWidth <= 0 || s.SheetHeight <= 0 {
		return model.NestedLayout{}, &ConfigurationError{
			Reason: fmt.Sprintf("sheet dimensions must be positive, got %.1f x %.1f", s.SheetWidth, s.SheetHeight),
		}
	}

	usableW := s.UsableWidth()
	usableH := s.UsableHeight()
	for _, p := range plates {
		if p.Width > usableW+fitEps || p.Height > usableH+fitEps {
			return model.NestedLayout{}, &FitError{
				GroupName:    p.GroupName,
				Width:        p.Width,
				Height:       p.Height,
				UsableWidth:  usableW,
				UsableHeight: usableH,
			}
		}
	}

	total := extract.TotalInstances(plates)
	if total == 0 {
		return model.NestedLayout{}, ErrNothingToNest
	}

	// Expand the catalog: quantity n yields exactly n instances.
	instances := make([]instance, 0, total)
	for _, p := range plates {
		for i := 0; i < p.Quantity; i++ {
			instances = append(instances, instance{plate: p})
		}
	}

	// Height descending, ties by width descending. This ordering is an
	// observable contract of the engine, not a tuning detail.
	sort.SliceStable(instances, func(i, j int) bool {
		pi, pj := instances[i].plate, instances[j].plate
		if pi.Height != pj.Height {
			return pi.Height > pj.Height
		}
		return pi.Width > pj.Width
	})

	layout := model.NestedLayout{}
	placed := 0

	for _, inst := range instances {
		p := inst.plate
		for {
			if len(layout.Sheets) == 0 {
				layout.Sheets = append(layout.Sheets, e.newSheet(0))
			}
			sheet := &layout.Sheets[len(layout.Sheets)-1]

			if sheet.CursorX+p.Width <= s.SheetWidth-s.SheetMargin+fitEps {
				// The instance fits in the current row. Vertical space
				// is guaranteed: the row opener was the tallest item of
				// the row and passed the vertical check.
				layout.Placements = append(layout.Placements, model.PlacedInstance{
					GroupName:  p.GroupName,
					SheetIndex: sheet.Index,
					InsertX:    sheet.OriginX + sheet.CursorX - p.Bounds.MinX,
					InsertY:    sheet.OriginY + sheet.CursorY - p.Bounds.MinY,
					CellX:      sheet.CursorX,
					CellY:      sheet.CursorY,
					Width:      p.Width,
					Height:     p.Height,
				})
				sheet.CursorX += p.Width + s.PartGap
				if p.Height > sheet.RowHeight {
					sheet.RowHeight = p.Height
				}
				placed++
				if e.Progress != nil {
					e.Progress(placed, total)
				}
				break
			}

			// Wrap to a new row and retry the same instance.
			sheet.CursorX = s.SheetMargin
			sheet.CursorY += sheet.RowHeight + s.PartGap
			sheet.RowHeight = 0

			if sheet.CursorY+p.Height > s.SheetHeight-s.SheetMargin+fitEps {
				// No row fits on this sheet anymore: open a new sheet.
				// Termination is guaranteed because every plate fits on
				// an empty sheet.
				layout.Sheets = append(layout.Sheets, e.newSheet(len(layout.Sheets)))
			}
		}
	}

	return layout, nil
}

// newSheet opens sheet number index with the cursor at the usable
// corner. Sheets are spaced along X by SheetGap for visual separation
// only.
func (e *Engine) newSheet(index int) model.Sheet {
	s := e.Settings
	return model.Sheet{
		Index:     index,
		OriginX:   float64(index) * (s.SheetWidth + s.SheetGap),
		OriginY:   0,
		Width:     s.SheetWidth,
		Height:    s.SheetHeight,
		CursorX:   s.SheetMargin,
		CursorY:   s.SheetMargin,
		RowHeight: 0,
	}
}
