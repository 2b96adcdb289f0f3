// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Kind discriminates the two project variants sharing one collection.
type Kind string

const (
	KindStatic    Kind = "STATIC"
	KindAnimation Kind = "ANIMATION"
)

// LoopMode controls timeline playback of an animation block.
type LoopMode string

const (
	LoopForward  LoopMode = "forward"
	LoopBackward LoopMode = "backward"
	LoopPingPong LoopMode = "pingpong"
)

// Valid reports whether m is one of the known loop modes.
func (m LoopMode) Valid() bool {
	switch m {
	case LoopForward, LoopBackward, LoopPingPong:
		return true
	}
	return false
}

// Layer is one paintable grid. Pixels are row-major: Pixels[y][x].
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
	Pixels  [][]string
}

// Frame is one complete multi-layer canvas of an animation. Topmost layer first.
type Frame struct {
	ID              string
	Name            string
	SelectedLayerID *string
	Layers          []Layer
}

// AnimationBlock is a named timeline segment referencing 1-based frame numbers.
type AnimationBlock struct {
	ID       string
	Name     string
	Frames   []int
	LoopMode LoopMode
}

// Content is the variant part of a Project. It is implemented by
// StaticContent and AnimationContent only.
type Content interface {
	Kind() Kind
	isContent()
}

// StaticContent is the payload of a single-canvas artwork.
type StaticContent struct {
	SelectedLayerID *string
	Layers          []Layer
}

// Kind implements Content.
func (StaticContent) Kind() Kind { return KindStatic }
func (StaticContent) isContent() {}

// AnimationContent is the payload of a multi-frame animation.
type AnimationContent struct {
	Frames []Frame
	Blocks []AnimationBlock
}

// Kind implements Content.
func (AnimationContent) Kind() Kind { return KindAnimation }
func (AnimationContent) isContent() {}

// Project is the root persisted entity: one user-owned artwork or animation.
type Project struct {
	ID         uuid.UUID // assigned by the store on first save
	OwnerID    uuid.UUID // FK -> users.id, immutable
	Name       string
	Width      int
	Height     int
	Content    Content
	PreviewPNG *string // opaque data URL
	Favorite   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Kind returns the discriminator derived from the project content.
// A project without content is reported as static.
func (p *Project) Kind() Kind {
	if p.Content == nil {
		return KindStatic
	}
	return p.Content.Kind()
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// User represents an account stored on the server. Passwords are stored as argon2id hashes only.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   string    // encoded argon2id hash
	CreatedAt time.Time
}
