package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter: the first hit in a window sets the TTL.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// TokenKey scopes a window to one redemption token. The key carries a digest
// prefix, never the token itself.
func TokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("rate_limit:token:%s", hex.EncodeToString(sum[:12]))
}

// IPKey scopes a window to one client address.
func IPKey(ip string) string {
	return fmt.Sprintf("rate_limit:ip:%s", ip)
}
