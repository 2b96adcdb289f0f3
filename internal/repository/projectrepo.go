package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/pixology/pixology-server/internal/model"
)

// ProjectRepository is a keyed collection of project documents.
// Implementations treat a single Save as atomic.
type ProjectRepository interface {
	// Save upserts by ID and returns the stored project. A nil ID is assigned on first save.
	// A name already taken by the same owner (case-insensitive) yields errs.ErrConflict.
	Save(ctx context.Context, p *model.Project) (*model.Project, error)

	// FindByID loads a project regardless of owner; errs.ErrNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)

	// FindByIDAndOwner loads a project owned by ownerID; errs.ErrNotFound otherwise.
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error)

	// Delete removes a project by ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByOwnerAndNameIgnoreCase reports whether ownerID already has a project named name.
	ExistsByOwnerAndNameIgnoreCase(ctx context.Context, ownerID uuid.UUID, name string) (bool, error)

	// ListByOwner returns the owner's projects ordered by UpdatedAt descending,
	// optionally restricted to a favorite value.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, favorite *bool) ([]model.Project, error)
}
