package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/pixology/pixology-server/internal/convert"
	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
	"github.com/pixology/pixology-server/internal/repository"
)

// ProjectService defines operations over static and animation projects.
type ProjectService interface {
	// CreateStatic validates and stores a new static project.
	CreateStatic(ctx context.Context, ownerID uuid.UUID, req model.SaveProjectRequest) (model.ProjectDetail, error)
	// UpdateStatic overwrites the mutable fields of a static project.
	UpdateStatic(ctx context.Context, projectID, ownerID uuid.UUID, req model.SaveProjectRequest) (model.ProjectDetail, error)
	// CreateAnimation validates and stores a new animation project.
	CreateAnimation(ctx context.Context, ownerID uuid.UUID, req model.SaveAnimationRequest) (model.AnimationDetail, error)
	// UpdateAnimation overwrites the mutable fields of an animation project.
	UpdateAnimation(ctx context.Context, projectID, ownerID uuid.UUID, req model.SaveAnimationRequest) (model.AnimationDetail, error)
	// List returns owner's projects, most recently updated first.
	List(ctx context.Context, ownerID uuid.UUID, favorite *bool, kind string) ([]model.ProjectSummary, error)
	// GetDetail returns a static project; ok is false when it is absent, foreign or an animation.
	GetDetail(ctx context.Context, projectID, ownerID uuid.UUID) (model.ProjectDetail, bool, error)
	// GetAnimationDetail returns an animation project; ok is false otherwise.
	GetAnimationDetail(ctx context.Context, projectID, ownerID uuid.UUID) (model.AnimationDetail, bool, error)
	// Delete removes an owned project of any kind.
	Delete(ctx context.Context, projectID, ownerID uuid.UUID) error
	// SetFavorite sets the favorite flag of an owned project.
	SetFavorite(ctx context.Context, projectID, ownerID uuid.UUID, value bool) (model.ProjectSummary, error)
}

type ProjectServiceImpl struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewProjectService constructs ProjectService. A nil clock means time.Now.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository, now func() time.Time) *ProjectServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &ProjectServiceImpl{projects: projects, users: users, now: now}
}

// CreateStatic builds a new STATIC project from req.
func (s *ProjectServiceImpl) CreateStatic(ctx context.Context, ownerID uuid.UUID, req model.SaveProjectRequest) (model.ProjectDetail, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return model.ProjectDetail{}, err
	}
	if err := validatePayload(req); err != nil {
		return model.ProjectDetail{}, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.requireFreeName(ctx, ownerID, name); err != nil {
		return model.ProjectDetail{}, err
	}

	ts := s.stamp()
	p := &model.Project{
		OwnerID:    ownerID,
		Name:       name,
		Width:      req.Width,
		Height:     req.Height,
		Content:    staticContent(req),
		PreviewPNG: trimPtr(req.PreviewPNG),
		Favorite:   req.Favorite != nil && *req.Favorite,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	saved, err := s.projects.Save(ctx, p)
	if err != nil {
		return model.ProjectDetail{}, err
	}
	return convert.ToDetail(saved)
}

// UpdateStatic replaces the content of a STATIC project owned by ownerID.
func (s *ProjectServiceImpl) UpdateStatic(ctx context.Context, projectID, ownerID uuid.UUID, req model.SaveProjectRequest) (model.ProjectDetail, error) {
	p, err := s.loadForUpdate(ctx, projectID, ownerID, model.KindStatic)
	if err != nil {
		return model.ProjectDetail{}, err
	}
	if err := validatePayload(req); err != nil {
		return model.ProjectDetail{}, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.requireRenameFree(ctx, p, name); err != nil {
		return model.ProjectDetail{}, err
	}

	p.Name = name
	p.Width = req.Width
	p.Height = req.Height
	p.Content = staticContent(req)
	p.PreviewPNG = trimPtr(req.PreviewPNG)
	p.Favorite = req.Favorite != nil && *req.Favorite
	p.UpdatedAt = s.stampAfter(p.UpdatedAt)

	saved, err := s.projects.Save(ctx, p)
	if err != nil {
		return model.ProjectDetail{}, err
	}
	return convert.ToDetail(saved)
}

// CreateAnimation builds a new ANIMATION project from req.
func (s *ProjectServiceImpl) CreateAnimation(ctx context.Context, ownerID uuid.UUID, req model.SaveAnimationRequest) (model.AnimationDetail, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return model.AnimationDetail{}, err
	}
	if err := validatePayload(req); err != nil {
		return model.AnimationDetail{}, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.requireFreeName(ctx, ownerID, name); err != nil {
		return model.AnimationDetail{}, err
	}

	ts := s.stamp()
	p := &model.Project{
		OwnerID:    ownerID,
		Name:       name,
		Width:      req.Width,
		Height:     req.Height,
		Content:    animationContent(req),
		PreviewPNG: trimPtr(req.PreviewPNG),
		Favorite:   req.Favorite != nil && *req.Favorite,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	saved, err := s.projects.Save(ctx, p)
	if err != nil {
		return model.AnimationDetail{}, err
	}
	return convert.ToAnimationDetail(saved)
}

// UpdateAnimation replaces the content of an ANIMATION project owned by ownerID.
func (s *ProjectServiceImpl) UpdateAnimation(ctx context.Context, projectID, ownerID uuid.UUID, req model.SaveAnimationRequest) (model.AnimationDetail, error) {
	p, err := s.loadForUpdate(ctx, projectID, ownerID, model.KindAnimation)
	if err != nil {
		return model.AnimationDetail{}, err
	}
	if err := validatePayload(req); err != nil {
		return model.AnimationDetail{}, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.requireRenameFree(ctx, p, name); err != nil {
		return model.AnimationDetail{}, err
	}

	p.Name = name
	p.Width = req.Width
	p.Height = req.Height
	p.Content = animationContent(req)
	p.PreviewPNG = trimPtr(req.PreviewPNG)
	p.Favorite = req.Favorite != nil && *req.Favorite
	p.UpdatedAt = s.stampAfter(p.UpdatedAt)

	saved, err := s.projects.Save(ctx, p)
	if err != nil {
		return model.AnimationDetail{}, err
	}
	return convert.ToAnimationDetail(saved)
}

// List returns summaries filtered by favorite at the store and by kind in memory.
func (s *ProjectServiceImpl) List(ctx context.Context, ownerID uuid.UUID, favorite *bool, kind string) ([]model.ProjectSummary, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	want, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	all, err := s.projects.ListByOwner(ctx, ownerID, favorite)
	if err != nil {
		return nil, err
	}
	if want == "" {
		return convert.ToSummaries(all), nil
	}
	kept := all[:0]
	for i := range all {
		if all[i].Kind() == want {
			kept = append(kept, all[i])
		}
	}
	return convert.ToSummaries(kept), nil
}

// GetDetail loads a STATIC project owned by ownerID.
func (s *ProjectServiceImpl) GetDetail(ctx context.Context, projectID, ownerID uuid.UUID) (model.ProjectDetail, bool, error) {
	p, ok, err := s.findOwned(ctx, projectID, ownerID)
	if err != nil || !ok || p.Kind() != model.KindStatic {
		return model.ProjectDetail{}, false, err
	}
	d, err := convert.ToDetail(p)
	if err != nil {
		return model.ProjectDetail{}, false, err
	}
	return d, true, nil
}

// GetAnimationDetail loads an ANIMATION project owned by ownerID.
func (s *ProjectServiceImpl) GetAnimationDetail(ctx context.Context, projectID, ownerID uuid.UUID) (model.AnimationDetail, bool, error) {
	p, ok, err := s.findOwned(ctx, projectID, ownerID)
	if err != nil || !ok || p.Kind() != model.KindAnimation {
		return model.AnimationDetail{}, false, err
	}
	d, err := convert.ToAnimationDetail(p)
	if err != nil {
		return model.AnimationDetail{}, false, err
	}
	return d, true, nil
}

// Delete removes a project; a project owned by someone else is reported as not found.
func (s *ProjectServiceImpl) Delete(ctx context.Context, projectID, ownerID uuid.UUID) error {
	p, ok, err := s.findOwned(ctx, projectID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotFound
	}
	return s.projects.Delete(ctx, p.ID)
}

// SetFavorite updates the flag and bumps updatedAt.
func (s *ProjectServiceImpl) SetFavorite(ctx context.Context, projectID, ownerID uuid.UUID, value bool) (model.ProjectSummary, error) {
	p, ok, err := s.findOwned(ctx, projectID, ownerID)
	if err != nil {
		return model.ProjectSummary{}, err
	}
	if !ok {
		return model.ProjectSummary{}, errs.ErrNotFound
	}
	p.Favorite = value
	p.UpdatedAt = s.stampAfter(p.UpdatedAt)
	saved, err := s.projects.Save(ctx, p)
	if err != nil {
		return model.ProjectSummary{}, err
	}
	return convert.ToSummary(saved), nil
}

// --- helpers ---

func (s *ProjectServiceImpl) requireOwner(ctx context.Context, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return errs.Validationf("userId is required")
	}
	ok, err := s.users.Exists(ctx, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s: %w", ownerID, errs.ErrNotFound)
	}
	return nil
}

func (s *ProjectServiceImpl) requireFreeName(ctx context.Context, ownerID uuid.UUID, name string) error {
	taken, err := s.projects.ExistsByOwnerAndNameIgnoreCase(ctx, ownerID, name)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("project name %q already exists: %w", name, errs.ErrConflict)
	}
	return nil
}

// requireRenameFree checks collisions only when the name actually changes.
func (s *ProjectServiceImpl) requireRenameFree(ctx context.Context, p *model.Project, name string) error {
	if strings.EqualFold(p.Name, name) {
		return nil
	}
	return s.requireFreeName(ctx, p.OwnerID, name)
}

// loadForUpdate applies the update preconditions in order: owner, existence, ownership, kind.
func (s *ProjectServiceImpl) loadForUpdate(ctx context.Context, projectID, ownerID uuid.UUID, kind model.Kind) (*model.Project, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("project %s: %w", projectID, errs.ErrNotFound)
		}
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, fmt.Errorf("project %s: %w", projectID, errs.ErrForbidden)
	}
	if p.Kind() != kind {
		return nil, errs.Validationf("project is %s, not %s", p.Kind(), kind)
	}
	return p, nil
}

// findOwned reports ok=false for absent and foreign projects alike.
func (s *ProjectServiceImpl) findOwned(ctx context.Context, projectID, ownerID uuid.UUID) (*model.Project, bool, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, false, err
	}
	p, err := s.projects.FindByIDAndOwner(ctx, projectID, ownerID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// stamp returns the current time at storage precision, strictly after any
// stamp previously issued by this service.
func (s *ProjectServiceImpl) stamp() time.Time {
	return s.stampAfter(time.Time{})
}

// stampAfter is stamp that is also strictly after prev.
func (s *ProjectServiceImpl) stampAfter(prev time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.now().UTC().Truncate(time.Microsecond)
	floor := s.last
	if prev.After(floor) {
		floor = prev
	}
	if !ts.After(floor) {
		ts = floor.Add(time.Microsecond)
	}
	s.last = ts
	return ts
}

func parseKind(s string) (model.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "static":
		return model.KindStatic, nil
	case "animation":
		return model.KindAnimation, nil
	}
	return "", errs.Validationf("invalid kind %q; expected static or animation", s)
}

func staticContent(req model.SaveProjectRequest) model.StaticContent {
	return model.StaticContent{
		SelectedLayerID: req.SelectedLayerID,
		Layers:          convert.FromLayerDTOs(req.Layers),
	}
}

func animationContent(req model.SaveAnimationRequest) model.AnimationContent {
	return model.AnimationContent{
		Frames: convert.FromFrameDTOs(req.Frames),
		Blocks: convert.FromBlockDTOs(req.Animations),
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
