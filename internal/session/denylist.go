package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "session:revoked:"

// Denylist records revoked token ids until they would have expired anyway.
type Denylist struct {
	rdb *redis.Client
}

func NewDenylist(rdb *redis.Client) *Denylist { return &Denylist{rdb: rdb} }

// Revoke marks tokenID revoked until expiresAt. Already-expired tokens are ignored.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 || tokenID == "" {
		return nil
	}
	return d.rdb.Set(ctx, denylistPrefix+tokenID, 1, ttl).Err()
}

// IsRevoked reports whether tokenID was revoked.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.rdb.Get(ctx, denylistPrefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
