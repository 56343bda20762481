package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mimos-de-madera/backoffice-service/internal/config"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/metrics"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
)

const (
	orderKeyPrefix   = "order:"
	productKeyPrefix = "product:"
	defaultCacheTTL  = 5 * time.Minute
)

// RedisCache implements OrderCache and ProductCache using Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisCache creates a Redis-backed cache for orders and products.
func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLogger("cache"),
	}
}

var (
	_ OrderCache   = (*RedisCache)(nil)
	_ ProductCache = (*productCacheAdapter)(nil)
)

// Get retrieves an order from cache; a miss returns nil, nil.
func (c *RedisCache) Get(ctx context.Context, id string) (*models.Order, error) {
	data, err := c.client.Get(ctx, orderKeyPrefix+id).Bytes()
	if err == redis.Nil {
		metrics.CacheHits.WithLabelValues("order", "miss").Inc()
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}

	metrics.CacheHits.WithLabelValues("order", "hit").Inc()
	return &order, nil
}

// Set stores an order in cache.
func (c *RedisCache) Set(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, orderKeyPrefix+order.ID, data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return err
	}
	return nil
}

// Delete removes an order from cache.
func (c *RedisCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, orderKeyPrefix+id).Err()
}

// GetProduct retrieves a product from cache; a miss returns nil, nil.
func (c *RedisCache) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err == redis.Nil {
		metrics.CacheHits.WithLabelValues("product", "miss").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}

	metrics.CacheHits.WithLabelValues("product", "hit").Inc()
	return &product, nil
}

// SetProduct stores a product in cache.
func (c *RedisCache) SetProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKeyPrefix+product.ID, data, c.ttl).Err()
}

// DeleteProduct removes a product from cache.
func (c *RedisCache) DeleteProduct(ctx context.Context, id string) error {
	return c.client.Del(ctx, productKeyPrefix+id).Err()
}

// Ping verifies connectivity for readiness checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// productCacheAdapter exposes the product methods under the ProductCache
// interface names.
type productCacheAdapter struct {
	cache *RedisCache
}

// ProductView returns the cache viewed as a ProductCache.
func (c *RedisCache) ProductView() ProductCache {
	return &productCacheAdapter{cache: c}
}

func (a *productCacheAdapter) Get(ctx context.Context, id string) (*models.Product, error) {
	return a.cache.GetProduct(ctx, id)
}

func (a *productCacheAdapter) Set(ctx context.Context, product *models.Product) error {
	return a.cache.SetProduct(ctx, product)
}

func (a *productCacheAdapter) Delete(ctx context.Context, id string) error {
	return a.cache.DeleteProduct(ctx, id)
}
