package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowLimiter is a fixed-window counter shared by every API replica.
// Keys look like "<prefix>:<key>" and expire with the window.
type WindowLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewWindowLimiter(c *Client, prefix string, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		rdb:    c.Raw(),
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.prefix + ":" + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd

	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})

	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", k, err)
	}

	remaining := ttl.Val()

	// first hit of a window, or a key that lost its expiry
	if remaining < 0 {
		err = l.rdb.PExpire(ctx, k, l.window).Err()
		if err != nil {
			return false, 0, fmt.Errorf("rate limit expire %s: %w", k, err)
		}
		remaining = l.window
	}

	if incr.Val() > l.limit {
		return false, remaining, nil
	}

	return true, 0, nil
}
