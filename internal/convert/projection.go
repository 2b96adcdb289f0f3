// Package convert maps between the domain model and its wire shapes.
package convert

import (
	"fmt"
	"strings"

	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
)

// --- projections (server -> client) ---

// ToSummary builds the kind-independent list view of a project.
func ToSummary(p *model.Project) model.ProjectSummary {
	return model.ProjectSummary{
		ID:         p.ID.String(),
		Name:       p.Name,
		Width:      p.Width,
		Height:     p.Height,
		Favorite:   p.Favorite,
		PreviewPNG: p.PreviewPNG,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ToSummaries maps a slice of projects to summaries, keeping order.
func ToSummaries(in []model.Project) []model.ProjectSummary {
	out := make([]model.ProjectSummary, 0, len(in))
	for i := range in {
		out = append(out, ToSummary(&in[i]))
	}
	return out
}

// ToDetail builds the full view of a static project.
func ToDetail(p *model.Project) (model.ProjectDetail, error) {
	sc, ok := p.Content.(model.StaticContent)
	if !ok {
		return model.ProjectDetail{}, fmt.Errorf("project %s is %s, not static: %w", p.ID, p.Kind(), errs.ErrDataIntegrity)
	}
	return model.ProjectDetail{
		ProjectSummary:  ToSummary(p),
		SelectedLayerID: sc.SelectedLayerID,
		Layers:          ToLayerDTOs(sc.Layers),
		CreatedAt:       p.CreatedAt,
	}, nil
}

// ToAnimationDetail builds the full view of an animation project.
func ToAnimationDetail(p *model.Project) (model.AnimationDetail, error) {
	ac, ok := p.Content.(model.AnimationContent)
	if !ok {
		return model.AnimationDetail{}, fmt.Errorf("project %s is %s, not animation: %w", p.ID, p.Kind(), errs.ErrDataIntegrity)
	}
	return model.AnimationDetail{
		ProjectSummary: ToSummary(p),
		Frames:         ToFrameDTOs(ac.Frames),
		Animations:     ToBlockDTOs(ac.Blocks),
		CreatedAt:      p.CreatedAt,
	}, nil
}

// ToLayerDTOs converts layers to their wire shape. A nil slice stays empty, not null.
func ToLayerDTOs(in []model.Layer) []model.LayerDTO {
	out := make([]model.LayerDTO, len(in))
	for i, l := range in {
		out[i] = model.LayerDTO{ID: l.ID, Name: l.Name, Visible: l.Visible, Locked: l.Locked, Pixels: l.Pixels}
	}
	return out
}

// ToFrameDTOs converts frames to their wire shape.
func ToFrameDTOs(in []model.Frame) []model.FrameDTO {
	out := make([]model.FrameDTO, len(in))
	for i, f := range in {
		out[i] = model.FrameDTO{ID: f.ID, Name: f.Name, SelectedLayerID: f.SelectedLayerID, Layers: ToLayerDTOs(f.Layers)}
	}
	return out
}

// ToBlockDTOs converts timeline blocks to their wire shape.
func ToBlockDTOs(in []model.AnimationBlock) []model.AnimationBlockDTO {
	out := make([]model.AnimationBlockDTO, len(in))
	for i, b := range in {
		out[i] = model.AnimationBlockDTO{ID: b.ID, Name: b.Name, Frames: b.Frames, LoopMode: string(b.LoopMode)}
	}
	return out
}

// --- payloads (client -> server) ---

// FromLayerDTOs copies wire layers into the domain model verbatim.
func FromLayerDTOs(in []model.LayerDTO) []model.Layer {
	out := make([]model.Layer, len(in))
	for i, l := range in {
		out[i] = model.Layer{ID: l.ID, Name: l.Name, Visible: l.Visible, Locked: l.Locked, Pixels: l.Pixels}
	}
	return out
}

// FromFrameDTOs copies wire frames into the domain model.
func FromFrameDTOs(in []model.FrameDTO) []model.Frame {
	out := make([]model.Frame, len(in))
	for i, f := range in {
		out[i] = model.Frame{ID: f.ID, Name: f.Name, SelectedLayerID: f.SelectedLayerID, Layers: FromLayerDTOs(f.Layers)}
	}
	return out
}

// FromBlockDTOs copies wire blocks into the domain model. The loop mode is
// trimmed and a blank one becomes forward.
func FromBlockDTOs(in []model.AnimationBlockDTO) []model.AnimationBlock {
	out := make([]model.AnimationBlock, len(in))
	for i, b := range in {
		mode := model.LoopMode(strings.TrimSpace(b.LoopMode))
		if mode == "" {
			mode = model.LoopForward
		}
		out[i] = model.AnimationBlock{ID: b.ID, Name: b.Name, Frames: b.Frames, LoopMode: mode}
	}
	return out
}
