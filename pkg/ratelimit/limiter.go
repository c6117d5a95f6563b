// Package ratelimit counts events per key in fixed windows stored in Redis, so every
// instance of the service shares one budget per key.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidConfig = errors.New("rate limit must be positive and window at least 1ms")

// incrWindow increments the window counter and starts its expiry on the first hit.
var incrWindow = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

type Limiter struct {
	client    redis.Scripter
	keyPrefix string
	limit     int
	window    time.Duration
	now       func() time.Time
}

func NewLimiter(client redis.Scripter, keyPrefix string, limit int, window time.Duration) (*Limiter, error) {
	if limit <= 0 || window < time.Millisecond {
		return nil, ErrInvalidConfig
	}
	return &Limiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
		now:       time.Now,
	}, nil
}

// Allow records one event for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := incrWindow.Run(ctx, l.client, []string{l.windowKey(key)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return count <= int64(l.limit), nil
}

// windowKey buckets time by window length so keys roll over without a cleanup job.
func (l *Limiter) windowKey(key string) string {
	bucket := l.now().UnixMilli() / l.window.Milliseconds()
	return fmt.Sprintf("%s%s:%d", l.keyPrefix, key, bucket)
}
