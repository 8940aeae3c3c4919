package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-service/pkg/cache"
)

// Limiter is a redis sliding-window throttle keyed by (subject, operation).
// Subjects are client IPs at the HTTP layer and delivery targets for OTP
// issuance. Over-limit requests fail fast; they are never queued.
type Limiter struct {
	cache       *cache.Cache
	window      time.Duration
	maxInWindow int
	cooldown    time.Duration
}

func NewLimiter(cache *cache.Cache, window time.Duration, max int, cooldown time.Duration) *Limiter {
	return &Limiter{cache: cache, window: window, maxInWindow: max, cooldown: cooldown}
}

var (
	ErrTooSoon = errors.New("please wait before retrying this operation")
	ErrBlocked = errors.New("too many requests; try again later")
)

func (l *Limiter) CanRequest(ctx context.Context, subject, operation string) error {
	blockKey := fmt.Sprintf("block:%s:%s", subject, operation)
	lastKey := fmt.Sprintf("last:%s:%s", subject, operation)
	countKey := fmt.Sprintf("count:%s:%s", subject, operation)

	// 1. Check block (too many requests in window)
	if ttl, _ := l.cache.GetTTL(ctx, "rate", blockKey); ttl > 0 {
		return ErrBlocked
	}

	// 2. Check cooldown since last request
	if l.cooldown > 0 {
		if ttl, _ := l.cache.GetTTL(ctx, "rate", lastKey); ttl > 0 {
			return ErrTooSoon
		}
	}

	// 3. Increment count within window
	cnt, err := l.cache.IncrWithExpire(ctx, "rate", countKey, l.window)
	if err != nil {
		// Fail open: redis being down must not lock everyone out.
		return nil
	}

	if int(cnt) > l.maxInWindow {
		// block for an extended time
		_ = l.cache.Set(ctx, "rate", blockKey, "1", l.window*3)
		return ErrBlocked
	}

	if l.cooldown > 0 {
		_ = l.cache.Set(ctx, "rate", lastKey, "1", l.cooldown)
	}

	return nil
}
