package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
)

// UserStore implements UserRepository on a guarded map.
type UserStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]model.User
	byName map[string]uuid.UUID
}

// NewUserStore returns an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:   make(map[uuid.UUID]model.User),
		byName: make(map[string]uuid.UUID),
	}
}

// Create inserts a user; errs.ErrConflict when the username is taken.
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[u.Username]; ok {
		return errs.ErrConflict
	}
	if _, ok := s.byID[u.ID]; ok {
		return errs.ErrConflict
	}
	stored := *u
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.byID[u.ID] = stored
	s.byName[u.Username] = u.ID
	return nil
}

// GetByID loads a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

// GetByUsername loads a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

// Exists reports whether a user with id is registered.
func (s *UserStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}
