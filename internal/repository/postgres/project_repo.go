package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
	"github.com/pixology/pixology-server/internal/repository/document"
)

// ProjectRepo implements ProjectRepository using PostgreSQL.
type ProjectRepo struct{ db *DB }

// NewProjectRepo constructs a project repository.
func NewProjectRepo(db *DB) *ProjectRepo { return &ProjectRepo{db: db} }

const projectCols = `id, user_id, kind, name, width, height, selected_layer_id, layers, frames, animations, preview_png, favorite, created_at, updated_at`

// Save upserts a project document. user_id and created_at are never rewritten.
func (r *ProjectRepo) Save(ctx context.Context, p *model.Project) (*model.Project, error) {
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

	const q = `
INSERT INTO projects (` + projectCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
  kind=EXCLUDED.kind, name=EXCLUDED.name, width=EXCLUDED.width, height=EXCLUDED.height,
  selected_layer_id=EXCLUDED.selected_layer_id, layers=EXCLUDED.layers, frames=EXCLUDED.frames,
  animations=EXCLUDED.animations, preview_png=EXCLUDED.preview_png, favorite=EXCLUDED.favorite,
  updated_at=EXCLUDED.updated_at`
	_, err = r.db.Pool.Exec(ctx, q,
		d.ID, d.UserID, d.Kind, d.Name, d.Width, d.Height, d.SelectedLayerID,
		d.Layers, d.Frames, d.Animations, d.PreviewPNG, d.Favorite, d.CreatedAt, d.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("project name %q: %w", p.Name, errs.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID loads a project by id.
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	const q = `SELECT ` + projectCols + ` FROM projects WHERE id=$1`
	return r.one(r.db.Pool.QueryRow(ctx, q, id))
}

// FindByIDAndOwner loads a project by id scoped to its owner.
func (r *ProjectRepo) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error) {
	const q = `SELECT ` + projectCols + ` FROM projects WHERE id=$1 AND user_id=$2`
	return r.one(r.db.Pool.QueryRow(ctx, q, id, ownerID))
}

// Delete removes a project row.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM projects WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ExistsByOwnerAndNameIgnoreCase checks the per-owner name index.
func (r *ProjectRepo) ExistsByOwnerAndNameIgnoreCase(ctx context.Context, ownerID uuid.UUID, name string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE user_id=$1 AND lower(name)=lower($2))`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, ownerID, name).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListByOwner returns an owner's projects, most recently updated first.
func (r *ProjectRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, favorite *bool) ([]model.Project, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if favorite == nil {
		const q = `SELECT ` + projectCols + ` FROM projects WHERE user_id=$1 ORDER BY updated_at DESC`
		rows, err = r.db.Pool.Query(ctx, q, ownerID)
	} else {
		const q = `SELECT ` + projectCols + ` FROM projects WHERE user_id=$1 AND favorite=$2 ORDER BY updated_at DESC`
		rows, err = r.db.Pool.Query(ctx, q, ownerID, *favorite)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Project, 0, 16)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		p, err := document.Decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) one(row pgx.Row) (*model.Project, error) {
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return document.Decode(d)
}

func scanDocument(row pgx.Row) (document.Document, error) {
	var d document.Document
	err := row.Scan(
		&d.ID, &d.UserID, &d.Kind, &d.Name, &d.Width, &d.Height, &d.SelectedLayerID,
		&d.Layers, &d.Frames, &d.Animations, &d.PreviewPNG, &d.Favorite, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}
