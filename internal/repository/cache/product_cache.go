package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// cachedProductRepository keeps product rows in redis for catalog reads.
// Stock is not authoritative here; callers read it through the stock ledger.
type cachedProductRepository struct {
	next   domain.ProductRepository
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewCachedProductRepository(next domain.ProductRepository, client *redis.Client, ttl time.Duration, logger *logrus.Logger) domain.ProductRepository {
	return &cachedProductRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    logger,
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *cachedProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productKey(id)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product domain.Product
		if jsonErr := json.Unmarshal(raw, &product); jsonErr == nil {
			return &product, nil
		}
		c.log.Warnf("Cache: Dropping undecodable entry %s", key)
		c.evict(ctx, id)
	case err != redis.Nil:
		c.log.Warnf("Cache: Redis GET %s failed, falling back to database: %v", key, err)
	}

	product, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(product); err == nil {
		if setErr := c.client.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
			c.log.Warnf("Cache: Redis SET %s failed: %v", key, setErr)
		}
	}
	return product, nil
}

func (c *cachedProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return c.next.Create(ctx, product)
}

func (c *cachedProductRepository) Update(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	product, err := c.next.Update(ctx, id, update)
	c.evictAfterCommit(ctx, id)
	return product, err
}

func (c *cachedProductRepository) Delete(ctx context.Context, id int64) error {
	err := c.next.Delete(ctx, id)
	c.evictAfterCommit(ctx, id)
	return err
}

func (c *cachedProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return c.next.List(ctx, filter)
}

func (c *cachedProductRepository) AddVariation(ctx context.Context, variation *domain.ProductVariation) (*domain.ProductVariation, error) {
	return c.next.AddVariation(ctx, variation)
}

func (c *cachedProductRepository) GetVariation(ctx context.Context, productID, variationID int64) (*domain.ProductVariation, error) {
	return c.next.GetVariation(ctx, productID, variationID)
}

func (c *cachedProductRepository) ListVariations(ctx context.Context, productID int64) ([]domain.ProductVariation, error) {
	return c.next.ListVariations(ctx, productID)
}

func (c *cachedProductRepository) evict(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.log.Warnf("Cache: Failed to evict product %d: %v", id, err)
	}
}

// evictAfterCommit waits for the surrounding transaction so a concurrent
// read cannot put the pre-update row back into the cache.
func (c *cachedProductRepository) evictAfterCommit(ctx context.Context, id int64) {
	domain.AfterCommit(ctx, func(ctx context.Context) {
		c.evict(ctx, id)
	})
}
