package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"dermodazzle_back_end/internal/models"
)

const (
	ProductListKey  = "products:all"
	ProductCacheTTL = 10 * time.Minute
)

// ProductCache garde la liste complète du catalogue en JSON.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ProductCacheTTL}
}

func (c *ProductCache) Products(ctx context.Context) ([]models.Product, bool) {
	data, err := c.rdb.Get(ctx, ProductListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ Cache produits illisible: %v", err)
		}
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (c *ProductCache) StoreProducts(ctx context.Context, products []models.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, ProductListKey, data, c.ttl).Err(); err != nil {
		log.Printf("⚠️ Cache produits non écrit: %v", err)
	}
}

func (c *ProductCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, ProductListKey).Err(); err != nil {
		log.Printf("⚠️ Cache produits non invalidé: %v", err)
	}
}
