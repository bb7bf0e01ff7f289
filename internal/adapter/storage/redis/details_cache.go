package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// DetailsCache implements ports.DetailsCache using Redis. It holds the
// serialized wallet-details view so repeated admin reads skip the ledger
// queries. Mutating services invalidate after commit; the TTL bounds
// staleness if an invalidation is lost.
type DetailsCache struct {
	client *goredis.Client
	prefix string
}

// NewDetailsCache creates a new Redis-backed details cache.
func NewDetailsCache(client *goredis.Client) *DetailsCache {
	return &DetailsCache{
		client: client,
		prefix: "wallet:details:",
	}
}

// Get retrieves the cached details payload for a wallet.
// Returns nil, nil on a cache miss.
func (c *DetailsCache) Get(ctx context.Context, walletID uuid.UUID) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+walletID.String()).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis details get: %w", err)
	}
	return val, nil
}

// Set stores the details payload with a TTL.
func (c *DetailsCache) Set(ctx context.Context, walletID uuid.UUID, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+walletID.String(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis details set: %w", err)
	}
	return nil
}

// Invalidate drops the cached payload for a wallet.
func (c *DetailsCache) Invalidate(ctx context.Context, walletID uuid.UUID) error {
	if err := c.client.Del(ctx, c.prefix+walletID.String()).Err(); err != nil {
		return fmt.Errorf("redis details invalidate: %w", err)
	}
	return nil
}
