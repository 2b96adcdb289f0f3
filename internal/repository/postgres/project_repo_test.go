package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func strPtr(s string) *string { return &s }

var projectColumns = []string{
	"id", "user_id", "kind", "name", "width", "height", "selected_layer_id",
	"layers", "frames", "animations", "preview_png", "favorite", "created_at", "updated_at",
}

const selectByID = `SELECT id, user_id, kind, name, width, height, selected_layer_id, layers, frames, animations, preview_png, favorite, created_at, updated_at FROM projects WHERE id=\$1`

func staticProject(owner uuid.UUID) *model.Project {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Project{
		OwnerID: owner,
		Name:    "Sprite",
		Width:   16,
		Height:  16,
		Content: model.StaticContent{
			Layers: []model.Layer{{ID: "l1", Name: "Layer 1", Visible: true, Pixels: [][]string{{"#000"}}}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestProjectRepo_Save_AssignsIDOnInsert(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	owner := uuid.Must(uuid.NewV4())
	p := staticProject(owner)

	mock.ExpectExec(`INSERT INTO projects \(id, user_id, kind, name`).
		WithArgs(pgxmock.AnyArg(), owner, strPtr("STATIC"), "Sprite", 16, 16, (*string)(nil),
			pgxmock.AnyArg(), []byte(nil), []byte(nil), (*string)(nil), false, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := r.Save(context.Background(), p)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_Save_UniqueViolationIsConflict(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	p := staticProject(uuid.Must(uuid.NewV4()))
	p.ID = uuid.Must(uuid.NewV4())

	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := r.Save(context.Background(), p)
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestProjectRepo_Save_ExecErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	p := staticProject(uuid.Must(uuid.NewV4()))
	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("boom"))

	_, err := r.Save(context.Background(), p)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrConflict)
}

func TestProjectRepo_FindByID_LegacyRowDecodesAsStatic(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	owner := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(selectByID).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(projectColumns).AddRow(
			id, owner, (*string)(nil), "legacy", 8, 8, strPtr("l1"),
			[]byte(`[{"id":"l1","name":"L","visible":true,"locked":false,"pixels":[["#fff"]]}]`),
			[]byte(nil), []byte(nil), (*string)(nil), true, ts, ts,
		))

	p, err := r.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, model.KindStatic, p.Kind())
	require.Equal(t, owner, p.OwnerID)
	require.True(t, p.Favorite)
	sc := p.Content.(model.StaticContent)
	require.Equal(t, "l1", *sc.SelectedLayerID)
	require.Len(t, sc.Layers, 1)
}

func TestProjectRepo_FindByID_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(selectByID).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := r.FindByID(context.Background(), id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProjectRepo_FindByIDAndOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	owner := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(selectByID+` AND user_id=\$2`).
		WithArgs(id, owner).
		WillReturnRows(pgxmock.NewRows(projectColumns).AddRow(
			id, owner, strPtr("ANIMATION"), "walk", 32, 32, (*string)(nil),
			[]byte(nil),
			[]byte(`[{"id":"f1","name":"F1","selectedLayerId":null,"layers":[{"id":"l","name":"L","visible":true,"locked":false,"pixels":[]}]}]`),
			[]byte(`[]`), strPtr("data:image/png;base64,xx"), false, ts, ts,
		))

	p, err := r.FindByIDAndOwner(context.Background(), id, owner)
	require.NoError(t, err)
	require.Equal(t, model.KindAnimation, p.Kind())
	ac := p.Content.(model.AnimationContent)
	require.Len(t, ac.Frames, 1)
	require.Empty(t, ac.Blocks)

	mock.ExpectQuery(selectByID+` AND user_id=\$2`).WithArgs(id, owner).WillReturnError(pgx.ErrNoRows)
	_, err = r.FindByIDAndOwner(context.Background(), id, owner)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProjectRepo_FindByID_CorruptKind(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()
	mock.ExpectQuery(selectByID).WithArgs(id).
		WillReturnRows(pgxmock.NewRows(projectColumns).AddRow(
			id, uuid.Must(uuid.NewV4()), strPtr("VIDEO"), "x", 1, 1, (*string)(nil),
			[]byte(nil), []byte(nil), []byte(nil), (*string)(nil), false, ts, ts,
		))

	_, err := r.FindByID(context.Background(), id)
	require.ErrorIs(t, err, errs.ErrDataIntegrity)
}

func TestProjectRepo_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectExec(`DELETE FROM projects WHERE id=\$1`).WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(context.Background(), id))

	mock.ExpectExec(`DELETE FROM projects WHERE id=\$1`).WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(context.Background(), id), errs.ErrNotFound)

	mock.ExpectExec(`DELETE FROM projects WHERE id=\$1`).WithArgs(id).
		WillReturnError(errors.New("exec-fail"))
	require.Error(t, r.Delete(context.Background(), id))
}

func TestProjectRepo_ExistsByOwnerAndNameIgnoreCase(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	owner := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM projects WHERE user_id=\$1 AND lower\(name\)=lower\(\$2\)\)`).
		WithArgs(owner, "SPRITE").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := r.ExistsByOwnerAndNameIgnoreCase(context.Background(), owner, "SPRITE")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestProjectRepo_ListByOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	owner := uuid.Must(uuid.NewV4())
	id1, id2 := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	newer := time.Now().UTC()
	older := newer.Add(-time.Hour)

	rows := pgxmock.NewRows(projectColumns).
		AddRow(id1, owner, strPtr("STATIC"), "a", 4, 4, (*string)(nil),
			[]byte(`[{"id":"l","name":"L","visible":true,"locked":false,"pixels":[]}]`),
			[]byte(nil), []byte(nil), (*string)(nil), true, older, newer).
		AddRow(id2, owner, (*string)(nil), "b", 4, 4, (*string)(nil),
			[]byte(`[]`), []byte(nil), []byte(nil), (*string)(nil), true, older, older)

	fav := true
	mock.ExpectQuery(`FROM projects WHERE user_id=\$1 AND favorite=\$2 ORDER BY updated_at DESC`).
		WithArgs(owner, true).
		WillReturnRows(rows)

	out, err := r.ListByOwner(context.Background(), owner, &fav)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, id1, out[0].ID)
	require.Equal(t, model.KindStatic, out[1].Kind())

	mock.ExpectQuery(`FROM projects WHERE user_id=\$1 ORDER BY updated_at DESC`).
		WithArgs(owner).
		WillReturnError(errors.New("query-fail"))
	_, err = r.ListByOwner(context.Background(), owner, nil)
	require.Error(t, err)
}
