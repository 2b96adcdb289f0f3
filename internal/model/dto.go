package model

import "time"

// LayerDTO is the wire shape of a layer, shared by requests and responses.
type LayerDTO struct {
	ID      string     `json:"id" validate:"notblank"`
	Name    string     `json:"name" validate:"notblank"`
	Visible bool       `json:"visible"`
	Locked  bool       `json:"locked"`
	Pixels  [][]string `json:"pixels" validate:"required"`
}

// FrameDTO is the wire shape of an animation frame.
type FrameDTO struct {
	ID              string     `json:"id" validate:"notblank"`
	Name            string     `json:"name" validate:"notblank"`
	SelectedLayerID *string    `json:"selectedLayerId"`
	Layers          []LayerDTO `json:"layers" validate:"required,min=1,dive"`
}

// AnimationBlockDTO is the wire shape of a timeline block. LoopMode may be
// empty. Frame indices are 1-based and may point past the last frame after
// the client deletes one.
type AnimationBlockDTO struct {
	ID       string `json:"id" validate:"notblank"`
	Name     string `json:"name" validate:"notblank"`
	Frames   []int  `json:"frames" validate:"dive,min=1"`
	LoopMode string `json:"loopMode,omitempty" validate:"loopmode"`
}

// SaveProjectRequest is the payload for creating or updating a static project.
type SaveProjectRequest struct {
	Name            string     `json:"name" validate:"notblank"`
	Width           int        `json:"width" validate:"min=1,max=512"`
	Height          int        `json:"height" validate:"min=1,max=512"`
	SelectedLayerID *string    `json:"selectedLayerId"`
	Layers          []LayerDTO `json:"layers" validate:"required,min=1,dive"`
	PreviewPNG      *string    `json:"previewPng"`
	Favorite        *bool      `json:"favorite"`
}

// SaveAnimationRequest is the payload for creating or updating an animation.
type SaveAnimationRequest struct {
	Name       string              `json:"name" validate:"notblank"`
	Width      int                 `json:"width" validate:"min=1,max=512"`
	Height     int                 `json:"height" validate:"min=1,max=512"`
	Frames     []FrameDTO          `json:"frames" validate:"required,min=1,dive"`
	Animations []AnimationBlockDTO `json:"animations" validate:"dive"`
	PreviewPNG *string             `json:"previewPng"`
	Favorite   *bool               `json:"favorite"`
}

// ProjectSummary is the kind-independent list view of a project.
type ProjectSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Favorite   bool      `json:"favorite"`
	PreviewPNG *string   `json:"previewPng"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProjectDetail is the full view of a static project.
type ProjectDetail struct {
	ProjectSummary
	SelectedLayerID *string    `json:"selectedLayerId"`
	Layers          []LayerDTO `json:"layers"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// AnimationDetail is the full view of an animation project.
type AnimationDetail struct {
	ProjectSummary
	Frames     []FrameDTO          `json:"frames"`
	Animations []AnimationBlockDTO `json:"animations"`
	CreatedAt  time.Time           `json:"createdAt"`
}
