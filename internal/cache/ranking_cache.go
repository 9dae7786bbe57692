package cache

import (
	"context"
	"time"

	"bartab_backend/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const rankingKey = "bartab:popularity"

// RankingCache mirrors product popularity scores in a Redis sorted set so the
// popular-products listing does not hit Postgres on every request. The cache
// is strictly best-effort: a nil *RankingCache (Redis not configured) or a
// Redis failure degrades to the SQL fallback in the product service.
type RankingCache struct {
	rdb *redis.Client
}

// NewRankingCache connects to Redis. Returns nil when addr is empty, which
// disables the cache; all methods are safe to call on a nil receiver.
func NewRankingCache(addr, password string, db int) *RankingCache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("Redis unavailable, popularity ranking cache disabled")
		return nil
	}
	return &RankingCache{rdb: rdb}
}

// SetScore records a product's popularity score in the ranking.
func (c *RankingCache) SetScore(productID int64, score float64) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := c.rdb.ZAdd(ctx, rankingKey, redis.Z{
		Score:  score,
		Member: utils.Int64ToStr(productID),
	}).Err()
	if err != nil {
		log.Warn().Err(err).Int64("product_id", productID).Msg("Failed to update popularity ranking cache")
	}
}

// Remove drops a product from the ranking (deactivated products).
func (c *RankingCache) Remove(productID int64) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.rdb.ZRem(ctx, rankingKey, utils.Int64ToStr(productID)).Err(); err != nil {
		log.Warn().Err(err).Int64("product_id", productID).Msg("Failed to remove product from ranking cache")
	}
}

// TopProducts returns the highest-scored product IDs, best first. A nil
// cache or an empty set returns (nil, false) so the caller falls back to SQL.
func (c *RankingCache) TopProducts(limit int) ([]int64, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	members, err := c.rdb.ZRevRange(ctx, rankingKey, 0, int64(limit)-1).Result()
	if err != nil || len(members) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read popularity ranking cache")
		}
		return nil, false
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := utils.StrToInt64(m)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
