package status

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlist/craftlist/internal/setup/config"
	"github.com/craftlist/craftlist/pkg/utils"
	"go.uber.org/zap"
)

// DefaultCacheTTL is used when the configured cache lifetime is zero.
const DefaultCacheTTL = 45 * time.Minute

// Cache stores recent check results keyed by address. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(key string) (Result, bool)
	Set(key string, value Result)
}

// ttlCache adapts utils.TTLMap to the Cache interface.
type ttlCache struct {
	inner *utils.TTLMap[string, Result]
}

func (c *ttlCache) Get(key string) (Result, bool) { return c.inner.Get(key) }
func (c *ttlCache) Set(key string, value Result)  { c.inner.Set(key, value) }

// NewCache creates the default in-process cache with the given TTL.
func NewCache(ttl time.Duration) Cache {
	return &ttlCache{inner: utils.NewTTLMap[string, Result](ttl)}
}

// Checker serves status lookups through a result cache so repeated views of
// the same listing within the cache window cost a single upstream call.
type Checker struct {
	client *Client
	cache  Cache
	logger *zap.Logger
}

// NewChecker creates a Checker. A nil cache gets the default in-process
// TTL cache sized from the config.
func NewChecker(cfg *config.StatusAPI, client *Client, cache Cache, logger *zap.Logger) *Checker {
	if cache == nil {
		ttl := time.Duration(cfg.CacheTTL) * time.Minute
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}

		cache = NewCache(ttl)
	}

	return &Checker{
		client: client,
		cache:  cache,
		logger: logger.Named("status_checker"),
	}
}

// Check returns the cached result for an address when one is fresh,
// otherwise performs a live check and caches the outcome. Offline results
// are cached too; a dead server should not be re-polled on every view.
func (c *Checker) Check(ctx context.Context, req Request) Result {
	key := cacheKey(req)

	if result, ok := c.cache.Get(key); ok {
		c.logger.Debug("Status cache hit", zap.String("key", key))
		return result
	}

	result := c.client.Check(ctx, req)
	c.cache.Set(key, result)

	return result
}

func cacheKey(req Request) string {
	return fmt.Sprintf("%s:%d:%s", req.Host, req.Port, req.Family)
}
