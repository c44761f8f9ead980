// Package docstore implements the drawing document boundary of the
// pipeline. A Document is an in-memory drawing: named geometry groups,
// loose model-space entities, and group inserts. Persistence backends
// (JSON, DXF) implement the Store interface; the rest of the pipeline
// never touches a drawing file format directly.
package docstore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/msepahkar/platenest/internal/model"
)

// Entity is an opaque drawing entity. Concrete kinds live in this
// package only; callers query geometry through Document.GetBoundingBox.
type Entity interface {
	isEntity()
	translate(dx, dy float64) Entity
}

// boundsReporter is the optional capability of an entity to report an
// axis-aligned bounding box. Entities without it (e.g. Text) are
// excluded from extent calculations.
type boundsReporter interface {
	bounds() (model.BBox, bool)
}

// Polyline is a sequence of connected vertices, optionally closed.
type Polyline struct {
	Points model.Outline `json:"points"`
	Closed bool          `json:"closed"`
}

func (Polyline) isEntity() {}

func (p Polyline) translate(dx, dy float64) Entity {
	return Polyline{Points: p.Points.Translate(dx, dy), Closed: p.Closed}
}

func (p Polyline) bounds() (model.BBox, bool) {
	if len(p.Points) == 0 {
		return model.BBox{}, false
	}
	min, max := p.Points.BoundingBox()
	return model.BBox{MinX: min.X, MinY: min.Y, MaxX: max.X, MaxY: max.Y}, true
}

// Line is a single segment.
type Line struct {
	Start model.Point2D `json:"start"`
	End   model.Point2D `json:"end"`
}

func (Line) isEntity() {}

func (l Line) translate(dx, dy float64) Entity {
	return Line{
		Start: model.Point2D{X: l.Start.X + dx, Y: l.Start.Y + dy},
		End:   model.Point2D{X: l.End.X + dx, Y: l.End.Y + dy},
	}
}

func (l Line) bounds() (model.BBox, bool) {
	return model.BBox{
		MinX: minf(l.Start.X, l.End.X),
		MinY: minf(l.Start.Y, l.End.Y),
		MaxX: maxf(l.Start.X, l.End.X),
		MaxY: maxf(l.Start.Y, l.End.Y),
	}, true
}

// Circle is a full circle.
type Circle struct {
	Center model.Point2D `json:"center"`
	Radius float64       `json:"radius"`
}

func (Circle) isEntity() {}

func (c Circle) translate(dx, dy float64) Entity {
	return Circle{Center: model.Point2D{X: c.Center.X + dx, Y: c.Center.Y + dy}, Radius: c.Radius}
}

func (c Circle) bounds() (model.BBox, bool) {
	return model.BBox{
		MinX: c.Center.X - c.Radius,
		MinY: c.Center.Y - c.Radius,
		MaxX: c.Center.X + c.Radius,
		MaxY: c.Center.Y + c.Radius,
	}, true
}

// Text is an annotation. It reports no bounding box: label extents are
// estimated by the layout heuristics, not by the document store.
type Text struct {
	Value    string        `json:"value"`
	Position model.Point2D `json:"position"`
	Height   float64       `json:"height"`
}

func (Text) isEntity() {}

func (t Text) translate(dx, dy float64) Entity {
	return Text{
		Value:    t.Value,
		Position: model.Point2D{X: t.Position.X + dx, Y: t.Position.Y + dy},
		Height:   t.Height,
	}
}

// Group is a named, self-contained set of entities in group-local
// (definition) coordinates.
type Group struct {
	Name     string
	Color    Color
	Entities []Entity
}

// Insert places one instance of a group definition at an offset.
type Insert struct {
	GroupName string
	X, Y      float64
}

// Document is an in-memory drawing.
type Document struct {
	groupOrder []string
	groups     map[string]*Group

	// Model holds loose model-space entities (sheet boundaries, labels).
	Model []Entity

	// Inserts are the placed group instances, in insertion order.
	Inserts []Insert
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{groups: make(map[string]*Group)}
}

// GroupNames returns the group names in creation order.
func (d *Document) GroupNames() []string {
	names := make([]string, len(d.groupOrder))
	copy(names, d.groupOrder)
	return names
}

// Group looks up a group definition by name.
func (d *Document) Group(name string) (*Group, bool) {
	g, ok := d.groups[name]
	return g, ok
}

// NewGroup creates an empty group. The name must be unique within the
// document.
func (d *Document) NewGroup(name string, color Color) (*Group, error) {
	if _, exists := d.groups[name]; exists {
		return nil, fmt.Errorf("docstore: duplicate group %q", name)
	}
	g := &Group{Name: name, Color: color}
	d.groups[name] = g
	d.groupOrder = append(d.groupOrder, name)
	return g, nil
}

// RemoveGroup deletes a group definition and any inserts referring to it.
func (d *Document) RemoveGroup(name string) {
	if _, ok := d.groups[name]; !ok {
		return
	}
	delete(d.groups, name)
	for i, n := range d.groupOrder {
		if n == name {
			d.groupOrder = append(d.groupOrder[:i], d.groupOrder[i+1:]...)
			break
		}
	}
	kept := d.Inserts[:0]
	for _, ins := range d.Inserts {
		if ins.GroupName != name {
			kept = append(kept, ins)
		}
	}
	d.Inserts = kept
}

// CloneEntities deep-copies entities into the destination group.
func (d *Document) CloneEntities(dst *Group, src []Entity) {
	for _, e := range src {
		dst.Entities = append(dst.Entities, cloneEntity(e))
	}
}

func cloneEntity(e Entity) Entity {
	// translate(0,0) copies point slices, so mutations of the source
	// never leak into the clone.
	return e.translate(0, 0)
}

// GetBoundingBox reports the axis-aligned bounding box of an entity.
// The second return is false for entities that cannot report one.
func (d *Document) GetBoundingBox(e Entity) (model.BBox, bool) {
	if br, ok := e.(boundsReporter); ok {
		return br.bounds()
	}
	return model.BBox{}, false
}

// GroupBounds returns the union of the entity bounding boxes of a group
// definition. Entities without bounds are skipped; if no entity yields a
// box the second return is false.
func (d *Document) GroupBounds(name string) (model.BBox, bool) {
	g, ok := d.groups[name]
	if !ok {
		return model.BBox{}, false
	}
	var box model.BBox
	found := false
	for _, e := range g.Entities {
		b, ok := d.GetBoundingBox(e)
		if !ok {
			continue
		}
		if !found {
			box = b
			found = true
		} else {
			box = box.Union(b)
		}
	}
	return box, found
}

// AddLine appends a line to the model space.
func (d *Document) AddLine(start, end model.Point2D) {
	d.Model = append(d.Model, Line{Start: start, End: end})
}

// AddText appends a text annotation to the model space.
func (d *Document) AddText(value string, at model.Point2D, height float64) {
	d.Model = append(d.Model, Text{Value: value, Position: at, Height: height})
}

// AddInsert places one instance of a named group at the given offset.
func (d *Document) AddInsert(groupName string, x, y float64) error {
	if _, ok := d.groups[groupName]; !ok {
		return fmt.Errorf("docstore: insert references unknown group %q", groupName)
	}
	d.Inserts = append(d.Inserts, Insert{GroupName: groupName, X: x, Y: y})
	return nil
}

// FlattenedEntities returns all drawing geometry in drawing coordinates:
// model-space entities plus every insert's group entities translated by
// the insert offset.
func (d *Document) FlattenedEntities() []Entity {
	var out []Entity
	out = append(out, d.Model...)
	for _, ins := range d.Inserts {
		g, ok := d.groups[ins.GroupName]
		if !ok {
			continue
		}
		for _, e := range g.Entities {
			out = append(out, e.translate(ins.X, ins.Y))
		}
	}
	return out
}

// Store persists documents. Implementations read and write whole
// documents; a file is written once, after the full document is built.
type Store interface {
	Open(path string) (*Document, error)
	Save(doc *Document, path string) error
}

// ForPath selects a store backend by file extension.
func ForPath(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONStore{}, nil
	case ".dxf":
		return DXFStore{}, nil
	default:
		return nil, fmt.Errorf("docstore: unsupported drawing format %q", filepath.Ext(path))
	}
}

// OpenPath opens a document with the backend matching its extension.
func OpenPath(path string) (*Document, error) {
	store, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

// SavePath saves a document with the backend matching its extension.
func SavePath(doc *Document, path string) error {
	store, err := ForPath(path)
	if err != nil {
		return err
	}
	return store.Save(doc, path)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
