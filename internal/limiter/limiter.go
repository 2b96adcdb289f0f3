// Package limiter throttles login attempts per username and client address.
package limiter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Key identifies the subject of a login attempt. The client address is stored
// only as a SHA-256 hash.
type Key struct {
	Username string
	IPHash   []byte
}

// NewKey builds a key from a username and a raw client address.
func NewKey(username, ip string) Key {
	h := sha256.Sum256([]byte(ip))
	return Key{Username: username, IPHash: h[:]}
}

// String renders the key for backends that need a flat identifier.
func (k Key) String() string { return k.Username + ":" + hex.EncodeToString(k.IPHash) }

// Verdict is the outcome of a limiter check.
type Verdict struct {
	Allowed    bool
	RetryAfter time.Duration
}

func allow() Verdict {
	return Verdict{Allowed: true}
}

func deny(retry time.Duration) Verdict {
	return Verdict{RetryAfter: retry}
}

// Policy bounds failed attempts: MaxFails failures inside Window block the key for BlockFor.
type Policy struct {
	Window   time.Duration
	MaxFails int
	BlockFor time.Duration
}

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a login may be attempted now.
	Allow(ctx context.Context, k Key) (Verdict, error)
	// Failure records a failed attempt. The verdict is a denial when this
	// failure placed a block.
	Failure(ctx context.Context, k Key) (Verdict, error)
	// Success clears failures and any block.
	Success(ctx context.Context, k Key) error
}
