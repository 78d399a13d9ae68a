package redisdb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleKeyFmt = "throttle:%s:%s"

// Throttle is a fixed-window counter kept in redis. A nil *Throttle, or one
// without a client, allows everything.
type Throttle struct {
	rdb    *redis.Client
	name   string
	limit  int
	window time.Duration
}

func NewThrottle(rdb *redis.Client, name string, limit int, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, name: name, limit: limit, window: window}
}

func (t *Throttle) key(subject string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(subject))))
	return fmt.Sprintf(throttleKeyFmt, t.name, hex.EncodeToString(sum[:]))
}

// Allow counts one attempt for subject and reports whether it is within the
// window's limit. On redis errors it allows the attempt and returns the error.
func (t *Throttle) Allow(ctx context.Context, subject string) (bool, error) {
	if t == nil || t.rdb == nil || t.limit <= 0 {
		return true, nil
	}
	key := t.key(subject)
	count, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
			return true, fmt.Errorf("redis expire: %w", err)
		}
	}
	return count <= int64(t.limit), nil
}

// Reset clears the counter for subject.
func (t *Throttle) Reset(ctx context.Context, subject string) error {
	if t == nil || t.rdb == nil {
		return nil
	}
	return t.rdb.Del(ctx, t.key(subject)).Err()
}
