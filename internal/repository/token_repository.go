package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo is the Redis-backed access token denylist.  Each revoked token
// id is stored under its own key with a TTL equal to the token's remaining
// lifetime, so entries disappear once the token would have expired anyway.
type TokenRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewTokenRepo(rdb *redis.Client, prefix string) *TokenRepo {
	if prefix == "" {
		prefix = "denylist"
	}
	return &TokenRepo{rdb: rdb, prefix: prefix}
}

func (r *TokenRepo) key(tokenID string) string { return r.prefix + ":" + tokenID }

// Revoke denylists tokenID until exp.  Already-expired tokens are ignored.
func (r *TokenRepo) Revoke(ctx context.Context, tokenID string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, r.key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is on the denylist.
func (r *TokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.rdb.Get(ctx, r.key(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return true, nil
}
