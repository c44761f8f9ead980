package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/msepahkar/platenest/internal/model"
)

// JSONStore persists documents losslessly as JSON, including group
// names, colors and inserts. It is the canonical pipeline format: the
// quantity suffix encoded in group names survives a round trip.
type JSONStore struct{}

// jsonEntity is the on-disk polymorphic entity encoding.
type jsonEntity struct {
	Kind string `json:"kind"`

	Points model.Outline `json:"points,omitempty"`
	Closed bool          `json:"closed,omitempty"`

	Start *model.Point2D `json:"start,omitempty"`
	End   *model.Point2D `json:"end,omitempty"`

	Center *model.Point2D `json:"center,omitempty"`
	Radius float64        `json:"radius,omitempty"`

	Value    string         `json:"value,omitempty"`
	Position *model.Point2D `json:"position,omitempty"`
	Height   float64        `json:"height,omitempty"`
}

type jsonGroup struct {
	Name     string       `json:"name"`
	Color    Color        `json:"color"`
	Entities []jsonEntity `json:"entities"`
}

type jsonInsert struct {
	Group string  `json:"group"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type jsonDocument struct {
	Groups  []jsonGroup  `json:"groups"`
	Model   []jsonEntity `json:"model"`
	Inserts []jsonInsert `json:"inserts"`
}

func encodeEntity(e Entity) (jsonEntity, error) {
	switch v := e.(type) {
	case Polyline:
		return jsonEntity{Kind: "polyline", Points: v.Points, Closed: v.Closed}, nil
	case Line:
		s, en := v.Start, v.End
		return jsonEntity{Kind: "line", Start: &s, End: &en}, nil
	case Circle:
		c := v.Center
		return jsonEntity{Kind: "circle", Center: &c, Radius: v.Radius}, nil
	case Text:
		p := v.Position
		return jsonEntity{Kind: "text", Value: v.Value, Position: &p, Height: v.Height}, nil
	default:
		return jsonEntity{}, fmt.Errorf("docstore: cannot encode entity %T", e)
	}
}

func decodeEntity(je jsonEntity) (Entity, error) {
	switch je.Kind {
	case "polyline":
		return Polyline{Points: je.Points, Closed: je.Closed}, nil
	case "line":
		if je.Start == nil || je.End == nil {
			return nil, fmt.Errorf("docstore: line entity missing endpoints")
		}
		return Line{Start: *je.Start, End: *je.End}, nil
	case "circle":
		if je.Center == nil {
			return nil, fmt.Errorf("docstore: circle entity missing center")
		}
		return Circle{Center: *je.Center, Radius: je.Radius}, nil
	case "text":
		var pos model.Point2D
		if je.Position != nil {
			pos = *je.Position
		}
		return Text{Value: je.Value, Position: pos, Height: je.Height}, nil
	default:
		return nil, fmt.Errorf("docstore: unknown entity kind %q", je.Kind)
	}
}

func encodeEntities(entities []Entity) ([]jsonEntity, error) {
	out := make([]jsonEntity, 0, len(entities))
	for _, e := range entities {
		je, err := encodeEntity(e)
		if err != nil {
			return nil, err
		}
		out = append(out, je)
	}
	return out, nil
}

func decodeEntities(encoded []jsonEntity) ([]Entity, error) {
	out := make([]Entity, 0, len(encoded))
	for _, je := range encoded {
		e, err := decodeEntity(je)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Save writes the document as indented JSON, creating parent
// directories if needed.
func (JSONStore) Save(doc *Document, path string) error {
	jd := jsonDocument{}
	for _, name := range doc.groupOrder {
		g := doc.groups[name]
		entities, err := encodeEntities(g.Entities)
		if err != nil {
			return err
		}
		jd.Groups = append(jd.Groups, jsonGroup{Name: g.Name, Color: g.Color, Entities: entities})
	}
	var err error
	if jd.Model, err = encodeEntities(doc.Model); err != nil {
		return err
	}
	for _, ins := range doc.Inserts {
		jd.Inserts = append(jd.Inserts, jsonInsert{Group: ins.GroupName, X: ins.X, Y: ins.Y})
	}

	data, err := json.MarshalIndent(jd, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Open reads a document written by Save.
func (JSONStore) Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var jd jsonDocument
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, fmt.Errorf("docstore: %s: %w", path, err)
	}

	doc := NewDocument()
	for _, jg := range jd.Groups {
		g, err := doc.NewGroup(jg.Name, jg.Color)
		if err != nil {
			return nil, fmt.Errorf("docstore: %s: %w", path, err)
		}
		if g.Entities, err = decodeEntities(jg.Entities); err != nil {
			return nil, fmt.Errorf("docstore: %s: %w", path, err)
		}
	}
	if doc.Model, err = decodeEntities(jd.Model); err != nil {
		return nil, fmt.Errorf("docstore: %s: %w", path, err)
	}
	for _, ji := range jd.Inserts {
		if err := doc.AddInsert(ji.Group, ji.X, ji.Y); err != nil {
			return nil, fmt.Errorf("docstore: %s: %w", path, err)
		}
	}
	return doc, nil
}
