package limiter

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pixology:login:"

// Redis keeps failure counters that expire after the window. A lockout is a
// plain key whose TTL is the block duration.
type Redis struct {
	client redis.UniversalClient
	policy Policy
}

// NewRedis constructs a Redis-backed limiter.
func NewRedis(client redis.UniversalClient, p Policy) *Redis {
	return &Redis{client: client, policy: p}
}

func failKey(k Key) string  { return keyPrefix + "fails:" + k.String() }
func blockKey(k Key) string { return keyPrefix + "block:" + k.String() }

// Allow denies while the block key is alive.
func (l *Redis) Allow(ctx context.Context, k Key) (Verdict, error) {
	ttl, err := l.client.PTTL(ctx, blockKey(k)).Result()
	if err != nil {
		return Verdict{}, err
	}
	// -2 means no key, -1 a key without expiry; neither is a live block.
	if ttl > 0 {
		return deny(ttl), nil
	}
	return allow(), nil
}

// Success drops the counter and any block.
func (l *Redis) Success(ctx context.Context, k Key) error {
	return l.client.Del(ctx, failKey(k), blockKey(k)).Err()
}

// Failure increments the counter. The first failure starts the window.
func (l *Redis) Failure(ctx context.Context, k Key) (Verdict, error) {
	fk := failKey(k)
	fails, err := l.client.Incr(ctx, fk).Result()
	if err != nil {
		return Verdict{}, err
	}
	if fails == 1 {
		if err := l.client.PExpire(ctx, fk, l.policy.Window).Err(); err != nil {
			return Verdict{}, err
		}
	}
	if fails < int64(l.policy.MaxFails) {
		return allow(), nil
	}

	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, blockKey(k), 1, l.policy.BlockFor)
		pipe.Del(ctx, fk)
		return nil
	})
	if err != nil {
		return Verdict{}, err
	}
	return deny(l.policy.BlockFor), nil
}
