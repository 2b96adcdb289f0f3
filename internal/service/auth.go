// Package service contains application services for authentication and projects.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/pixology/pixology-server/internal/crypto"
	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/limiter"
	"github.com/pixology/pixology-server/internal/model"
	"github.com/pixology/pixology-server/internal/repository"
)

// AuthService defines registration and login.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, username, password string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password string, ip string) (tokens model.Tokens, user model.User, err error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Register creates a new user record with an argon2id password hash.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", errs.Validationf("username and password are required")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	pwdHash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return "", err
	}

	u := &model.User{
		ID:        uid,
		Username:  username,
		PwdHash:   pwdHash,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return "", fmt.Errorf("username %q is already taken: %w", username, err)
		}
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error) {
	username = strings.TrimSpace(username)
	key := limiter.NewKey(username, ip)

	v, err := s.lim.Allow(ctx, key)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !v.Allowed {
		return model.Tokens{}, model.User{}, rateLimited(v.RetryAfter)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, model.User{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PwdHash) {
		if v, ferr := s.lim.Failure(ctx, key); ferr == nil && !v.Allowed {
			return model.Tokens{}, model.User{}, rateLimited(v.RetryAfter)
		}
		// unknown user and wrong password look the same
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	// best-effort
	_ = s.lim.Success(ctx, key)

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

func rateLimited(retry time.Duration) error {
	return fmt.Errorf("retry in %s: %w", retry.Round(time.Second), errs.ErrRateLimited)
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}
