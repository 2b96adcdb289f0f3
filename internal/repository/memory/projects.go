// Package memory holds in-process implementations of the repository interfaces.
// Records are kept in their stored document shape so that decoding behaves
// exactly as it does against PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
	"github.com/pixology/pixology-server/internal/repository/document"
)

// ProjectStore implements ProjectRepository on a guarded map.
type ProjectStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]document.Document
}

// NewProjectStore returns an empty project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{docs: make(map[uuid.UUID]document.Document)}
}

// Save upserts a project. Owner and creation time of an existing record are kept.
func (s *ProjectStore) Save(ctx context.Context, p *model.Project) (*model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		p.ID = id
	}
	d, err := document.Encode(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.docs[d.ID]; ok {
		d.UserID = prev.UserID
		d.CreatedAt = prev.CreatedAt
	}
	for id, other := range s.docs {
		if id != d.ID && other.UserID == d.UserID && strings.EqualFold(other.Name, d.Name) {
			return nil, fmt.Errorf("project name %q: %w", p.Name, errs.ErrConflict)
		}
	}
	s.docs[d.ID] = clone(d)
	return p, nil
}

// FindByID loads a project regardless of owner.
func (s *ProjectStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	d, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.ErrNotFound
	}
	return document.Decode(clone(d))
}

// FindByIDAndOwner loads a project only when ownerID owns it.
func (s *ProjectStore) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	d, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok || d.UserID != ownerID {
		return nil, errs.ErrNotFound
	}
	return document.Decode(clone(d))
}

// Delete removes a project.
func (s *ProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// ExistsByOwnerAndNameIgnoreCase reports a name collision for ownerID.
func (s *ProjectStore) ExistsByOwnerAndNameIgnoreCase(ctx context.Context, ownerID uuid.UUID, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if d.UserID == ownerID && strings.EqualFold(d.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// ListByOwner returns ownerID's projects, most recently updated first.
func (s *ProjectStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, favorite *bool) ([]model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	docs := make([]document.Document, 0, len(s.docs))
	for _, d := range s.docs {
		if d.UserID != ownerID {
			continue
		}
		if favorite != nil && d.Favorite != *favorite {
			continue
		}
		docs = append(docs, clone(d))
	}
	s.mu.RUnlock()

	slices.SortFunc(docs, func(a, b document.Document) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	out := make([]model.Project, 0, len(docs))
	for _, d := range docs {
		p, err := document.Decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// PutDocument stores a raw document as is. It is used to seed records
// written by older versions, e.g. ones without a kind.
func (s *ProjectStore) PutDocument(d document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = clone(d)
}

func clone(d document.Document) document.Document {
	if d.Kind != nil {
		k := *d.Kind
		d.Kind = &k
	}
	if d.SelectedLayerID != nil {
		v := *d.SelectedLayerID
		d.SelectedLayerID = &v
	}
	if d.PreviewPNG != nil {
		v := *d.PreviewPNG
		d.PreviewPNG = &v
	}
	d.Layers = slices.Clone(d.Layers)
	d.Frames = slices.Clone(d.Frames)
	d.Animations = slices.Clone(d.Animations)
	return d
}
