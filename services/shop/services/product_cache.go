package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shoparak/shop-backend/services/shop/models"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"
)

// ProductCache handles Redis caching for the catalog. List caches are keyed by
// a shared version counter, so invalidation is a single INCR instead of a key
// scan.
type ProductCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProductCache {
	return &ProductCache{redis: client, ttl: ttl, logger: logger}
}

// GetProductList retrieves a cached product list for the given filters.
func (c *ProductCache) GetProductList(ctx context.Context, category string, availableOnly bool) ([]models.Product, bool) {
	version, err := c.getCacheVersion(ctx)
	if err != nil || version == 0 {
		return nil, false
	}

	cached, err := c.redis.Get(ctx, c.listCacheKey(version, category, availableOnly)).Result()
	if err != nil {
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(cached), &products); err != nil {
		c.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return products, true
}

// SetProductListAsync caches a product list in the background.
func (c *ProductCache) SetProductListAsync(category string, availableOnly bool, products []models.Product) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := c.getCacheVersion(bgCtx)
		if err != nil || version == 0 {
			return
		}

		data, err := json.Marshal(products)
		if err != nil {
			c.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}

		key := c.listCacheKey(version, category, availableOnly)
		if err := c.redis.Set(bgCtx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// GetProduct retrieves a cached single product.
func (c *ProductCache) GetProduct(ctx context.Context, id int64) (*models.Product, bool) {
	cached, err := c.redis.Get(ctx, productCachePrefix+strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal([]byte(cached), &product); err != nil {
		c.logger.Warn("Failed to unmarshal cached product",
			zap.Int64("product_id", id), zap.Error(err))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a single product in the background.
func (c *ProductCache) SetProductAsync(product *models.Product) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(product)
		if err != nil {
			c.logger.Warn("Failed to marshal product for cache",
				zap.Int64("product_id", product.ID), zap.Error(err))
			return
		}

		key := productCachePrefix + strconv.FormatInt(product.ID, 10)
		if err := c.redis.Set(bgCtx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache product",
				zap.Int64("product_id", product.ID), zap.Error(err))
		}
	}()
}

// InvalidateProduct bumps the list cache version and drops the per-product
// entry after a write.
func (c *ProductCache) InvalidateProduct(ctx context.Context, id int64) {
	if _, err := c.redis.Incr(ctx, cacheVersionKey).Result(); err != nil {
		c.logger.Error("Failed to invalidate product list cache",
			zap.Int64("product_id", id), zap.Error(err))
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		key := productCachePrefix + strconv.FormatInt(id, 10)
		if err := c.redis.Del(bgCtx, key).Err(); err != nil {
			c.logger.Warn("Failed to delete product cache",
				zap.Int64("product_id", id), zap.Error(err))
		}
	}()
}

func (c *ProductCache) getCacheVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := c.redis.Get(ctx, cacheVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}

		if err == redis.Nil {
			if err := c.redis.Set(ctx, cacheVersionKey, 1, 0).Err(); err == nil {
				return 1, nil
			}
		}

		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}

	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

func (c *ProductCache) listCacheKey(version int64, category string, availableOnly bool) string {
	return fmt.Sprintf("%s%d:c:%s:a:%t", productListCachePrefix, version, category, availableOnly)
}
