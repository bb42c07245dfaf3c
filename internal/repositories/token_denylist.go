package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// TokenDenylist records revoked token ids until the token would have expired anyway
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const revokedTokenPrefix = "auth:revoked:"

// RedisTokenDenylist implements TokenDenylist with expiring Redis keys
type RedisTokenDenylist struct {
	client *redis.Client
}

func NewRedisTokenDenylist(client *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{client: client}
}

func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	err := d.client.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err()
	return errors.Wrap(err, "revoke token")
}

func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, errors.Wrap(err, "check revoked token")
	}
	return n > 0, nil
}

// NoopTokenDenylist is used when Redis is not configured; nothing is ever revoked.
type NoopTokenDenylist struct{}

func (NoopTokenDenylist) Revoke(context.Context, string, time.Duration) error { return nil }

func (NoopTokenDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
