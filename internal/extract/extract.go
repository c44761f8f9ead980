// Package extract reads the nestable-plate catalog out of a
// consolidated drawing: geometry groups following the plate naming
// convention, their bounding boxes, and their declared quantities.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/msepahkar/platenest/internal/docstore"
	"github.com/msepahkar/platenest/internal/model"
)

// Plate is one unique nestable part: a geometry group with its measured
// extents and the replication count decoded from its name.
type Plate struct {
	GroupName string
	Bounds    model.BBox
	Width     float64
	Height    float64
	Quantity  int
}

// quantitySuffix matches the trailing _Q<integer> replication marker.
var quantitySuffix = regexp.MustCompile(`_Q(\d+)$`)

// DecodeQuantity returns the replication count encoded in a group name.
// Names without a _Q<n> suffix, or with n <= 0 or an unparsable value,
// decode to 1.
func DecodeQuantity(name string) int {
	m := quantitySuffix.FindStringSubmatch(name)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// Plates collects all valid plates from a document. Groups whose names
// lack the plate prefix are ignored; groups with no measurable geometry
// or degenerate extents are excluded.
func Plates(doc *docstore.Document) []Plate {
	var plates []Plate
	for _, name := range doc.GroupNames() {
		if !strings.HasPrefix(name, docstore.PlateGroupPrefix) {
			continue
		}
		bounds, ok := doc.GroupBounds(name)
		if !ok {
			continue
		}
		w := bounds.Width()
		h := bounds.Height()
		if w <= 0 || h <= 0 {
			continue
		}
		plates = append(plates, Plate{
			GroupName: name,
			Bounds:    bounds,
			Width:     w,
			Height:    h,
			Quantity:  DecodeQuantity(name),
		})
	}
	return plates
}

// TotalInstances sums the quantities of all plates.
func TotalInstances(plates []Plate) int {
	total := 0
	for _, p := range plates {
		total += p.Quantity
	}
	return total
}
