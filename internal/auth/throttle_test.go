package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/task-manager/backend/internal/apperr"
)

func setupThrottle(t *testing.T, max int) (*Throttle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewThrottle(rdb, "team", max, time.Minute), mr
}

func TestThrottle_LocksAfterMaxFailures(t *testing.T) {
	th, _ := setupThrottle(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := th.Check(ctx, "a@b.co"); err != nil {
			t.Fatalf("attempt %d blocked early: %v", i, err)
		}
		if err := th.Fail(ctx, "a@b.co"); err != nil {
			t.Fatalf("Fail: %v", err)
		}
	}

	if err := th.Check(ctx, "A@B.co "); !apperr.Is(err, apperr.TooManyRequests) {
		t.Fatalf("err = %v, want TooManyRequests", err)
	}
	if err := th.Check(ctx, "other@b.co"); err != nil {
		t.Fatalf("other email should not be throttled: %v", err)
	}
}

func TestThrottle_WindowExpires(t *testing.T) {
	th, mr := setupThrottle(t, 1)
	ctx := context.Background()

	th.Fail(ctx, "a@b.co")
	if err := th.Check(ctx, "a@b.co"); err == nil {
		t.Fatal("expected lockout")
	}

	mr.FastForward(2 * time.Minute)
	if err := th.Check(ctx, "a@b.co"); err != nil {
		t.Fatalf("lockout should expire: %v", err)
	}
}

func TestThrottle_ResetClears(t *testing.T) {
	th, _ := setupThrottle(t, 1)
	ctx := context.Background()

	th.Fail(ctx, "a@b.co")
	if err := th.Reset(ctx, "a@b.co"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := th.Check(ctx, "a@b.co"); err != nil {
		t.Fatalf("Check after reset: %v", err)
	}
}

func TestThrottle_RedisDown(t *testing.T) {
	th, mr := setupThrottle(t, 1)
	mr.Close()

	if err := th.Check(context.Background(), "a@b.co"); !apperr.Is(err, apperr.Internal) {
		t.Fatalf("err = %v, want Internal", err)
	}
}
