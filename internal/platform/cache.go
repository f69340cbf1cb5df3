package platform

import (
	"context"
	"time"

	"similar-products-service/internal/models"
	"similar-products-service/internal/redisclient"
	"similar-products-service/internal/util"

	"go.uber.org/zap"
)

// CachedCatalog wraps a Catalog with a short-TTL Redis cache for
// category listings. Single-product lookups always hit the platform so
// stock for the reference product stays fresh; cached listings are
// invalidated by catalog update events as well as by TTL. Profile data
// is never cached here or anywhere else.
type CachedCatalog struct {
	inner  Catalog
	cache  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalog decorates inner with the category-listing cache.
func NewCachedCatalog(inner Catalog, cache *redisclient.Client, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// GetProduct delegates directly to the wrapped catalog.
func (c *CachedCatalog) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return c.inner.GetProduct(ctx, productID)
}

// ListProductsByCategory serves the listing from Redis when possible.
// Cache failures degrade to a direct platform call, never to a request
// failure.
func (c *CachedCatalog) ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	products, hit, err := c.cache.GetCategoryProducts(ctx, categoryID)
	if err != nil {
		c.logger.Warn("Category cache read failed",
			zap.String("category_id", categoryID),
			zap.Error(err))
	}
	if hit {
		util.CategoryCacheHits.Inc()
		return products, nil
	}
	util.CategoryCacheMisses.Inc()

	products, err = c.inner.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetCategoryProducts(ctx, categoryID, products, c.ttl); err != nil {
		c.logger.Warn("Category cache write failed",
			zap.String("category_id", categoryID),
			zap.Error(err))
	}

	return products, nil
}
