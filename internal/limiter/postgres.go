package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the part of a pgx pool the limiter needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG keeps attempts in the login_attempts table. A failure outside the window
// restarts the count.
type PG struct {
	db     Querier
	policy Policy
	now    func() time.Time
}

// NewPG constructs a PostgreSQL-backed limiter on a shared pool.
func NewPG(db Querier, p Policy) *PG {
	return &PG{db: db, policy: p, now: time.Now}
}

// Allow denies while blocked_until lies in the future.
func (l *PG) Allow(ctx context.Context, k Key) (Verdict, error) {
	const q = `SELECT blocked_until FROM login_attempts WHERE username=$1 AND ip_hash=$2`
	var blockedUntil time.Time
	err := l.db.QueryRow(ctx, q, k.Username, k.IPHash).Scan(&blockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return allow(), nil
	}
	if err != nil {
		return Verdict{}, err
	}
	if now := l.now(); blockedUntil.After(now) {
		return deny(blockedUntil.Sub(now)), nil
	}
	return allow(), nil
}

// Success resets the row for k.
func (l *PG) Success(ctx context.Context, k Key) error {
	const q = `
INSERT INTO login_attempts (username, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 0, 'epoch', now())
ON CONFLICT (username, ip_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := l.db.Exec(ctx, q, k.Username, k.IPHash)
	return err
}

// Failure bumps the counter and places a block once MaxFails is reached.
func (l *PG) Failure(ctx context.Context, k Key) (Verdict, error) {
	const q = `
INSERT INTO login_attempts (username, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 1, 'epoch', now())
ON CONFLICT (username, ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN now() - login_attempts.updated_at > $3::interval THEN 1 ELSE login_attempts.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.db.QueryRow(ctx, q, k.Username, k.IPHash, l.policy.Window).Scan(&fails); err != nil {
		return Verdict{}, err
	}
	if fails < l.policy.MaxFails {
		return allow(), nil
	}

	const block = `UPDATE login_attempts SET blocked_until=$3, fail_count=0 WHERE username=$1 AND ip_hash=$2`
	if _, err := l.db.Exec(ctx, block, k.Username, k.IPHash, l.now().Add(l.policy.BlockFor)); err != nil {
		return Verdict{}, err
	}
	return deny(l.policy.BlockFor), nil
}
