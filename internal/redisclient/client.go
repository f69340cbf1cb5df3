package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"similar-products-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// Client caches e-commerce category listings in Redis. Remote profile
// state is deliberately never stored here.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func categoryKey(categoryID string) string {
	return fmt.Sprintf("category:%s", categoryID)
}

// GetCategoryProducts returns the cached listing for a category. The
// second return value reports whether the cache held an entry.
func (c *Client) GetCategoryProducts(ctx context.Context, categoryID string) ([]models.Product, bool, error) {
	payload, err := c.rdb.Get(ctx, categoryKey(categoryID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("category cache get failed: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, false, fmt.Errorf("category cache decode failed: %w", err)
	}

	return products, true, nil
}

// SetCategoryProducts stores a category listing with the given TTL.
func (c *Client) SetCategoryProducts(ctx context.Context, categoryID string, products []models.Product, ttl time.Duration) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("category cache encode failed: %w", err)
	}

	if err := c.rdb.Set(ctx, categoryKey(categoryID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("category cache set failed: %w", err)
	}
	return nil
}

// InvalidateCategory drops the cached listing for a category, forcing
// the next ranking call to fetch fresh stock data.
func (c *Client) InvalidateCategory(ctx context.Context, categoryID string) error {
	if err := c.rdb.Del(ctx, categoryKey(categoryID)).Err(); err != nil {
		return fmt.Errorf("category cache invalidate failed: %w", err)
	}
	return nil
}
