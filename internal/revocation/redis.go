package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// Redis stores revocations as expiring keys so a shared instance covers every
// API process.  Tokens are hashed before use as keys.
type Redis struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, now: time.Now}
}

// WithClock replaces the time source used to compute key TTLs.
func (r *Redis) WithClock(now func() time.Time) *Redis {
	r.now = now
	return r
}

func (r *Redis) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		// already unusable, nothing to remember
		return nil
	}
	// round up so the key never disappears before the token expires
	ttl = ttl.Truncate(time.Second) + time.Second
	return r.rdb.Set(ctx, redisKey(token), 1, ttl).Err()
}

func (r *Redis) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := r.rdb.Exists(ctx, redisKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func redisKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}
