package docstore

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"

	"github.com/msepahkar/platenest/internal/model"
)

// PlateGroupPrefix marks a geometry group as a nestable plate. Groups
// without this prefix are ignored by the nesting stage.
const PlateGroupPrefix = "PLATE_"

// DXFStore is the interop backend for DXF drawings.
//
// DXF has no lossless representation of the document's named groups, so
// reading flattens to geometry: every closed shape (closed polyline,
// circle, or chain of connected lines/arcs) becomes one plate group with
// a synthesized name and an implicit quantity of 1. Open geometry lands
// in model space. Writing flattens group inserts onto a layer named
// after each group. The JSON store is the lossless format.
type DXFStore struct{}

// chainTolerance is the maximum endpoint distance for joining loose
// segments into one outline.
const chainTolerance = 0.01

// segment is a line segment between two points, used for chaining
// disconnected LINE and ARC entities into outlines.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// Open reads a DXF drawing into a document.
func (DXFStore) Open(path string) (*Document, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("docstore: cannot open DXF file: %w", err)
	}

	var closed []Polyline
	var circles []Circle
	var segments []segment

	for _, ent := range drawing.Entities() {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				closed = append(closed, Polyline{Points: outline, Closed: true})
			}

		case *entity.Circle:
			circles = append(circles, Circle{
				Center: model.Point2D{X: e.Center[0], Y: e.Center[1]},
				Radius: e.Radius,
			})

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	chained, open := chainSegments(segments, chainTolerance)
	for _, c := range chained {
		closed = append(closed, Polyline{Points: c, Closed: true})
	}

	doc := NewDocument()
	groupNum := 0
	addGroup := func(e Entity) error {
		groupNum++
		name := fmt.Sprintf("%s%d", PlateGroupPrefix, groupNum)
		g, err := doc.NewGroup(name, Color{})
		if err != nil {
			return err
		}
		g.Entities = append(g.Entities, e)
		return doc.AddInsert(name, 0, 0)
	}

	for _, p := range closed {
		if err := addGroup(p); err != nil {
			return nil, err
		}
	}
	for _, c := range circles {
		if err := addGroup(c); err != nil {
			return nil, err
		}
	}
	for _, o := range open {
		doc.Model = append(doc.Model, Polyline{Points: o})
	}
	return doc, nil
}

// Save writes the document as a DXF drawing. Each group gets its own
// layer; inserts are flattened into translated entities.
func (DXFStore) Save(doc *Document, path string) error {
	d := dxf.NewDrawing()

	for _, name := range doc.GroupNames() {
		if _, err := d.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("docstore: %w", err)
		}
	}

	for _, e := range doc.Model {
		if err := writeDXFEntity(d, e); err != nil {
			return err
		}
	}
	for _, ins := range doc.Inserts {
		g, ok := doc.Group(ins.GroupName)
		if !ok {
			return fmt.Errorf("docstore: insert references unknown group %q", ins.GroupName)
		}
		if err := d.ChangeLayer(ins.GroupName); err != nil {
			return fmt.Errorf("docstore: %w", err)
		}
		for _, e := range g.Entities {
			if err := writeDXFEntity(d, e.translate(ins.X, ins.Y)); err != nil {
				return err
			}
		}
	}
	return d.SaveAs(path)
}

func writeDXFEntity(d *drawing.Drawing, e Entity) error {
	switch v := e.(type) {
	case Polyline:
		verts := make([][]float64, 0, len(v.Points))
		for _, p := range v.Points {
			verts = append(verts, []float64{p.X, p.Y})
		}
		if _, err := d.LwPolyline(v.Closed, verts...); err != nil {
			return fmt.Errorf("docstore: %w", err)
		}
	case Line:
		if _, err := d.Line(v.Start.X, v.Start.Y, 0, v.End.X, v.End.Y, 0); err != nil {
			return fmt.Errorf("docstore: %w", err)
		}
	case Circle:
		if _, err := d.Circle(v.Center.X, v.Center.Y, 0, v.Radius); err != nil {
			return fmt.Errorf("docstore: %w", err)
		}
	case Text:
		if _, err := d.Text(v.Value, v.Position.X, v.Position.Y, 0, v.Height); err != nil {
			return fmt.Errorf("docstore: %w", err)
		}
	default:
		return fmt.Errorf("docstore: cannot write entity %T to DXF", e)
	}
	return nil
}

// lwPolylineToOutline converts an LWPOLYLINE entity to an outline.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	var outline model.Outline

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := model.Point2D{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// The next vertex is added by the following iteration.
			outline = append(outline, arcPts[:len(arcPts)-1]...)
		} else {
			outline = append(outline, current)
		}
	}

	return outline
}

// bulgeArcPoints generates points along an arc defined by two endpoints
// and a DXF bulge factor (tangent of 1/4 the included angle).
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) model.Outline {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return model.Outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	// Arc center: perpendicular from the chord midpoint.
	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)

	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	var pts model.Outline
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, model.Point2D{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// arcToPoints converts an ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = model.Point2D{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to connected segments.
func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into outlines. It returns
// the closed outlines and the open chains separately.
func chainSegments(segs []segment, tolerance float64) (closed, open []model.Outline) {
	if len(segs) == 0 {
		return nil, nil
	}

	used := make([]bool, len(segs))
	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []model.Point2D{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			// Drop the duplicate closing point.
			closed = append(closed, model.Outline(chain[:len(chain)-1]))
		} else {
			open = append(open, model.Outline(chain))
		}
	}
	return closed, open
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b model.Point2D, tolerance float64) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx+dy*dy) <= tolerance
}
