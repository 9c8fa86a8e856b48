package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "auth:revoked:"

// Revocations is a Redis deny-list of token ids. A nil list, or one without
// a client, revokes nothing.
type Revocations struct {
	Redis *redis.Client
}

// Revoke denies jti until the token would have expired anyway.
func (r *Revocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.Redis == nil || ttl <= 0 {
		return nil
	}
	return r.Redis.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.Redis == nil {
		return false, nil
	}
	n, err := r.Redis.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
