// Package document defines the stored shape of a project and the codec between
// that shape and the domain model. Static and animation projects share one
// collection and are told apart by the Kind column; a missing Kind marks a
// record written before animations existed and decodes as static.
package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
)

// Document is one row of the projects collection. The nested payloads are JSON.
type Document struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Kind            *string // nil on legacy records
	Name            string
	Width           int
	Height          int
	SelectedLayerID *string
	Layers          []byte // static only
	Frames          []byte // animation only
	Animations      []byte // animation only
	PreviewPNG      *string
	Favorite        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type layerDoc struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Visible bool       `json:"visible"`
	Locked  bool       `json:"locked"`
	Pixels  [][]string `json:"pixels"`
}

type frameDoc struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	SelectedLayerID *string    `json:"selectedLayerId"`
	Layers          []layerDoc `json:"layers"`
}

type blockDoc struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Frames   []int   `json:"frames"`
	LoopMode *string `json:"loopMode,omitempty"`
}

// Encode converts a domain project to its stored shape.
func Encode(p *model.Project) (Document, error) {
	kind := string(p.Kind())
	d := Document{
		ID:         p.ID,
		UserID:     p.OwnerID,
		Kind:       &kind,
		Name:       p.Name,
		Width:      p.Width,
		Height:     p.Height,
		PreviewPNG: p.PreviewPNG,
		Favorite:   p.Favorite,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}

	var err error
	switch c := p.Content.(type) {
	case nil:
	case model.StaticContent:
		d.SelectedLayerID = c.SelectedLayerID
		if d.Layers, err = json.Marshal(toLayerDocs(c.Layers)); err != nil {
			return Document{}, fmt.Errorf("encode layers: %w", err)
		}
	case model.AnimationContent:
		if d.Frames, err = json.Marshal(toFrameDocs(c.Frames)); err != nil {
			return Document{}, fmt.Errorf("encode frames: %w", err)
		}
		if c.Blocks != nil {
			if d.Animations, err = json.Marshal(toBlockDocs(c.Blocks)); err != nil {
				return Document{}, fmt.Errorf("encode animations: %w", err)
			}
		}
	default:
		return Document{}, fmt.Errorf("encode: unsupported content %T: %w", p.Content, errs.ErrDataIntegrity)
	}
	return d, nil
}

// Decode converts a stored document back to the domain model.
// This is the only place where a missing kind is defaulted to static.
func Decode(d Document) (*model.Project, error) {
	p := &model.Project{
		ID:         d.ID,
		OwnerID:    d.UserID,
		Name:       d.Name,
		Width:      d.Width,
		Height:     d.Height,
		PreviewPNG: d.PreviewPNG,
		Favorite:   d.Favorite,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}

	switch kind := normalizeKind(d.Kind); kind {
	case model.KindStatic:
		var layers []layerDoc
		if err := unmarshal(d.Layers, &layers); err != nil {
			return nil, fmt.Errorf("project %s layers: %w", d.ID, err)
		}
		p.Content = model.StaticContent{
			SelectedLayerID: d.SelectedLayerID,
			Layers:          fromLayerDocs(layers),
		}
	case model.KindAnimation:
		var frames []frameDoc
		if err := unmarshal(d.Frames, &frames); err != nil {
			return nil, fmt.Errorf("project %s frames: %w", d.ID, err)
		}
		var blocks []blockDoc
		if err := unmarshal(d.Animations, &blocks); err != nil {
			return nil, fmt.Errorf("project %s animations: %w", d.ID, err)
		}
		p.Content = model.AnimationContent{
			Frames: fromFrameDocs(frames),
			Blocks: fromBlockDocs(blocks),
		}
	default:
		return nil, fmt.Errorf("project %s has kind %q: %w", d.ID, kind, errs.ErrDataIntegrity)
	}
	return p, nil
}

func normalizeKind(k *string) model.Kind {
	if k == nil || *k == "" {
		return model.KindStatic
	}
	return model.Kind(*k)
}

func unmarshal(b []byte, dst any) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDataIntegrity, err)
	}
	return nil
}

func toLayerDocs(in []model.Layer) []layerDoc {
	out := make([]layerDoc, len(in))
	for i, l := range in {
		out[i] = layerDoc{ID: l.ID, Name: l.Name, Visible: l.Visible, Locked: l.Locked, Pixels: l.Pixels}
	}
	return out
}

func fromLayerDocs(in []layerDoc) []model.Layer {
	if in == nil {
		return nil
	}
	out := make([]model.Layer, len(in))
	for i, l := range in {
		out[i] = model.Layer{ID: l.ID, Name: l.Name, Visible: l.Visible, Locked: l.Locked, Pixels: l.Pixels}
	}
	return out
}

func toFrameDocs(in []model.Frame) []frameDoc {
	out := make([]frameDoc, len(in))
	for i, f := range in {
		out[i] = frameDoc{ID: f.ID, Name: f.Name, SelectedLayerID: f.SelectedLayerID, Layers: toLayerDocs(f.Layers)}
	}
	return out
}

func fromFrameDocs(in []frameDoc) []model.Frame {
	if in == nil {
		return nil
	}
	out := make([]model.Frame, len(in))
	for i, f := range in {
		out[i] = model.Frame{ID: f.ID, Name: f.Name, SelectedLayerID: f.SelectedLayerID, Layers: fromLayerDocs(f.Layers)}
	}
	return out
}

func toBlockDocs(in []model.AnimationBlock) []blockDoc {
	out := make([]blockDoc, len(in))
	for i, b := range in {
		mode := string(b.LoopMode)
		out[i] = blockDoc{ID: b.ID, Name: b.Name, Frames: b.Frames, LoopMode: &mode}
	}
	return out
}

func fromBlockDocs(in []blockDoc) []model.AnimationBlock {
	if in == nil {
		return nil
	}
	out := make([]model.AnimationBlock, len(in))
	for i, b := range in {
		mode := model.LoopForward
		if b.LoopMode != nil && *b.LoopMode != "" {
			mode = model.LoopMode(*b.LoopMode)
		}
		out[i] = model.AnimationBlock{ID: b.ID, Name: b.Name, Frames: b.Frames, LoopMode: mode}
	}
	return out
}
