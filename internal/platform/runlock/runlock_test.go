package runlock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

func TestLocalLockerExclusive(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	lease, err := l.Acquire(ctx, "docent:lock:7", time.Minute)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, "docent:lock:7", time.Minute); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
	if _, err := l.Acquire(ctx, "docent:lock:8", time.Minute); err != nil {
		t.Fatalf("other key should be free: %v", err)
	}
	if err := lease.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := l.Acquire(ctx, "docent:lock:7", time.Minute); err != nil {
		t.Fatalf("expected re-acquire after release: %v", err)
	}
}

func TestLocalLockerExpiry(t *testing.T) {
	l := NewLocal()
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }

	stale, err := l.Acquire(context.Background(), "k", time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	now = now.Add(2 * time.Second)
	if _, err := l.Acquire(context.Background(), "k", time.Second); err != nil {
		t.Fatalf("expired lock should be reclaimable: %v", err)
	}
	// the stale holder must not free the new owner's lease
	_ = stale.Release(context.Background())
	if _, err := l.Acquire(context.Background(), "k", time.Second); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
}

func TestRedisLockerIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	r, err := NewRedisLocker(logger.Nop(), addr, "test:runlock:")
	if err != nil {
		t.Fatalf("NewRedisLocker: %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	lease, err := r.Acquire(ctx, "art:1", 5*time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := r.Acquire(ctx, "art:1", 5*time.Second); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
	if err := lease.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := r.Acquire(ctx, "art:1", 5*time.Second)
	if err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}
	_ = again.Release(ctx)
}
