package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/task-manager/backend/internal/apperr"
)

// LoginGuard limits failed login attempts per email.
type LoginGuard interface {
	Check(ctx context.Context, email string) error
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// Throttle is a Redis-backed LoginGuard using a fixed window per email.
type Throttle struct {
	rdb    *redis.Client
	prefix string
	max    int
	window time.Duration
}

func NewThrottle(rdb *redis.Client, prefix string, maxAttempts int, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, prefix: prefix, max: maxAttempts, window: window}
}

func (t *Throttle) key(email string) string {
	return "login_failures:" + t.prefix + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Check fails with TooManyRequests once the window's budget is spent.
func (t *Throttle) Check(ctx context.Context, email string) error {
	n, err := t.rdb.Get(ctx, t.key(email)).Int()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "read login attempts", err)
	}
	if n >= t.max {
		return apperr.New(apperr.TooManyRequests, "Too many login attempts. Try again later")
	}
	return nil
}

// Fail records one failed attempt. The window starts at the first failure.
func (t *Throttle) Fail(ctx context.Context, email string) error {
	key := t.key(email)
	n, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		return apperr.Wrap(apperr.Internal, "record login failure", err)
	}
	if n == 1 {
		if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
			return apperr.Wrap(apperr.Internal, "record login failure", err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *Throttle) Reset(ctx context.Context, email string) error {
	return t.rdb.Del(ctx, t.key(email)).Err()
}

// NoopGuard never throttles. Used when Redis is not configured.
type NoopGuard struct{}

func (NoopGuard) Check(context.Context, string) error { return nil }
func (NoopGuard) Fail(context.Context, string) error  { return nil }
func (NoopGuard) Reset(context.Context, string) error { return nil }
