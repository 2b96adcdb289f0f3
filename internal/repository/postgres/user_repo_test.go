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

var userColumns = []string{"id", "username", "pwd_hash", "created_at"}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "u",
		PwdHash:  "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
	}

	// OK
	mock.ExpectExec(`INSERT INTO users \(id, username, pwd_hash\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs(u.ID, u.Username, u.PwdHash).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	// Unique violation
	mock.ExpectExec(`INSERT INTO users \(id, username, pwd_hash\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs(u.ID, u.Username, u.PwdHash).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Create(ctx, u)
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, username, pwd_hash, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(id, "u", "h", time.Now()))
	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)

	mock.ExpectQuery(`SELECT id, username, pwd_hash, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	name := "u2"
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, username, pwd_hash, created_at FROM users WHERE username=\$1`).
		WithArgs(name).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(id, name, "h", time.Now()))
	u, err := r.GetByUsername(ctx, name)
	require.NoError(t, err)
	require.Equal(t, name, u.Username)

	mock.ExpectQuery(`SELECT id, username, pwd_hash, created_at FROM users WHERE username=\$1`).
		WithArgs(name).
		WillReturnError(errors.New("conn reset"))
	_, err = r.GetByUsername(ctx, name)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_Exists(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id=\$1\)`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	ok, err := r.Exists(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}
