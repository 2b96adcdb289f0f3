package limiter

import (
	"context"
	"sync"
	"time"
)

type attempt struct {
	fails        int
	blockedUntil time.Time
	updatedAt    time.Time
}

// Memory is an in-process limiter for development and single-instance setups.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	policy  Policy
	entries map[string]*attempt
}

// NewMemory constructs an in-process limiter. A nil clock means time.Now.
func NewMemory(now func() time.Time, p Policy) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{now: now, policy: p, entries: map[string]*attempt{}}
}

func (l *Memory) Allow(_ context.Context, k Key) (Verdict, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.entries[k.String()]
	if !ok {
		return allow(), nil
	}
	if now := l.now(); a.blockedUntil.After(now) {
		return deny(a.blockedUntil.Sub(now)), nil
	}
	return allow(), nil
}

func (l *Memory) Success(_ context.Context, k Key) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, k.String())
	return nil
}

func (l *Memory) Failure(_ context.Context, k Key) (Verdict, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	a, ok := l.entries[k.String()]
	if !ok || now.Sub(a.updatedAt) > l.policy.Window {
		a = &attempt{}
		l.entries[k.String()] = a
	}
	a.fails++
	a.updatedAt = now
	if a.fails < l.policy.MaxFails {
		return allow(), nil
	}
	a.blockedUntil = now.Add(l.policy.BlockFor)
	a.fails = 0
	return deny(l.policy.BlockFor), nil
}
