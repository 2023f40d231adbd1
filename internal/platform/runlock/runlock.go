package runlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrHeld is returned when another run already owns the key.
var ErrHeld = errors.New("lock already held")

// Locker hands out exclusive, expiring leases on string keys.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

type localEntry struct {
	token   string
	expires time.Time
}

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]localEntry
	now  func() time.Time
}

func NewLocal() *LocalLocker {
	return &LocalLocker{held: map[string]localEntry{}, now: time.Now}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, ErrHeld
	}
	tok := uuid.NewString()
	l.held[key] = localEntry{token: tok, expires: now.Add(ttl)}
	return &localLease{l: l, key: key, token: tok}, nil
}

type localLease struct {
	l     *LocalLocker
	key   string
	token string
}

func (ls *localLease) Release(context.Context) error {
	ls.l.mu.Lock()
	defer ls.l.mu.Unlock()
	if e, ok := ls.l.held[ls.key]; ok && e.token == ls.token {
		delete(ls.l.held, ls.key)
	}
	return nil
}
