package memory

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
	"github.com/pixology/pixology-server/internal/repository/document"
)

func project(owner uuid.UUID, name string, updated time.Time) *model.Project {
	return &model.Project{
		OwnerID: owner,
		Name:    name,
		Width:   4,
		Height:  4,
		Content: model.StaticContent{
			Layers: []model.Layer{{ID: "l", Name: "L", Visible: true, Pixels: [][]string{{"#000"}}}},
		},
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestProjectStore_SaveFindDelete(t *testing.T) {
	s := NewProjectStore()
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	saved, err := s.Save(ctx, project(owner, "Sprite", time.Now()))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)

	got, err := s.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Sprite", got.Name)

	_, err = s.FindByIDAndOwner(ctx, saved.ID, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, s.Delete(ctx, saved.ID))
	_, err = s.FindByID(ctx, saved.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, saved.ID), errs.ErrNotFound)
}

func TestProjectStore_NameUniquePerOwnerIgnoreCase(t *testing.T) {
	s := NewProjectStore()
	ctx := context.Background()
	a, b := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	first, err := s.Save(ctx, project(a, "Sprite", time.Now()))
	require.NoError(t, err)

	_, err = s.Save(ctx, project(a, "sprite", time.Now()))
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = s.Save(ctx, project(b, "sprite", time.Now()))
	require.NoError(t, err)

	// Re-saving the same record under its own name is an update, not a collision.
	first.Name = "SPRITE"
	_, err = s.Save(ctx, first)
	require.NoError(t, err)

	ok, err := s.ExistsByOwnerAndNameIgnoreCase(ctx, a, "sPrItE")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestProjectStore_SaveKeepsOwnerAndCreatedAt(t *testing.T) {
	s := NewProjectStore()
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := s.Save(ctx, project(owner, "x", created))
	require.NoError(t, err)

	p.OwnerID = uuid.Must(uuid.NewV4())
	p.CreatedAt = created.Add(time.Hour)
	_, err = s.Save(ctx, p)
	require.NoError(t, err)

	got, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, owner, got.OwnerID)
	require.True(t, got.CreatedAt.Equal(created))
}

func TestProjectStore_ListByOwner(t *testing.T) {
	s := NewProjectStore()
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	base := time.Now()

	old := project(owner, "old", base.Add(-time.Hour))
	old.Favorite = true
	_, err := s.Save(ctx, old)
	require.NoError(t, err)
	_, err = s.Save(ctx, project(owner, "new", base))
	require.NoError(t, err)
	_, err = s.Save(ctx, project(uuid.Must(uuid.NewV4()), "someone else", base))
	require.NoError(t, err)

	all, err := s.ListByOwner(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "new", all[0].Name)
	require.Equal(t, "old", all[1].Name)

	fav := true
	favs, err := s.ListByOwner(ctx, owner, &fav)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.Equal(t, "old", favs[0].Name)
}

func TestProjectStore_LegacyDocument(t *testing.T) {
	s := NewProjectStore()
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	s.PutDocument(document.Document{
		ID:     id,
		UserID: owner,
		Name:   "legacy",
		Width:  2,
		Height: 2,
		Layers: []byte(`[{"id":"l","name":"L","visible":true,"locked":false,"pixels":[]}]`),
	})

	p, err := s.FindByIDAndOwner(ctx, id, owner)
	require.NoError(t, err)
	require.Equal(t, model.KindStatic, p.Kind())
}

func TestProjectStore_CanceledContext(t *testing.T) {
	s := NewProjectStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.FindByID(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, context.Canceled)
}

func TestUserStore(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()
	u := &model.User{ID: uuid.Must(uuid.NewV4()), Username: "alice", PwdHash: "h"}

	require.NoError(t, s.Create(ctx, u))
	require.ErrorIs(t, s.Create(ctx, &model.User{ID: uuid.Must(uuid.NewV4()), Username: "alice"}), errs.ErrConflict)

	ok, err := s.Exists(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.False(t, got.CreatedAt.IsZero())

	_, err = s.GetByID(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}
