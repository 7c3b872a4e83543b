package status

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// redisKeyPrefix namespaces status entries inside the shared cache database.
const redisKeyPrefix = "status:"

// redisCache stores check results in Redis so every API replica shares one
// cache window per address. Errors degrade to cache misses; a flaky cache
// must never take status lookups down with it.
type redisCache struct {
	client rueidis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed Cache with the given TTL.
func NewRedisCache(client rueidis.Client, ttl time.Duration, logger *zap.Logger) Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &redisCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("status_cache"),
	}
}

func (c *redisCache) Get(key string) (Result, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := c.client.Do(ctx, c.client.B().Get().Key(redisKeyPrefix+key).Build()).AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			c.logger.Debug("Status cache read failed", zap.Error(err), zap.String("key", key))
		}

		return Result{}, false
	}

	var result Result
	if err := sonic.Unmarshal(data, &result); err != nil {
		c.logger.Debug("Discarding undecodable cache entry", zap.Error(err), zap.String("key", key))

		return Result{}, false
	}

	return result, true
}

func (c *redisCache) Set(key string, value Result) {
	data, err := sonic.Marshal(value)
	if err != nil {
		c.logger.Debug("Failed to encode status result", zap.Error(err), zap.String("key", key))

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err = c.client.Do(ctx,
		c.client.B().Set().Key(redisKeyPrefix+key).Value(string(data)).Ex(c.ttl).Build()).Error()
	if err != nil {
		c.logger.Debug("Status cache write failed", zap.Error(err), zap.String("key", key))
	}
}
