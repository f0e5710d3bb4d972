// Package scorecache caches computed credit scores in redis so score reads
// never block or get blocked by money-movement transactions.
package scorecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
)

const keyPrefix = "credit-score:"

// CacheRedis stores score snapshots with a TTL. A stale-by-TTL snapshot is
// acceptable; refreshes replace the value, never mutate it.
type CacheRedis struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns CacheRedis with the given client and snapshot TTL.
func New(client *redis.Client, ttl time.Duration) *CacheRedis {
	return &CacheRedis{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached score for the user, reporting ok=false on a miss.
func (c *CacheRedis) Get(ctx context.Context, userID string) (domain.CreditScore, bool, error) {
	l := zerolog.Ctx(ctx)

	var score domain.CreditScore

	raw, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return score, false, nil
		}

		l.Error().Err(err).Send()

		return score, false, err
	}

	if err := json.Unmarshal(raw, &score); err != nil {
		l.Error().Err(err).Send()
		return score, false, err
	}

	return score, true, nil
}

// Set replaces the cached score for the user.
func (c *CacheRedis) Set(ctx context.Context, score domain.CreditScore) error {
	l := zerolog.Ctx(ctx)

	raw, err := json.Marshal(score)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	if err := c.client.Set(ctx, keyPrefix+score.UserID, raw, c.ttl).Err(); err != nil {
		l.Error().Err(err).Send()
		return err
	}

	return nil
}
