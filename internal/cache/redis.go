// Package cache regroupe tout ce qui vit dans Redis : paniers, cache du
// catalogue, compteurs de limitation et cache d'authentification.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis ouvre la connexion Redis et la vérifie.
func InitRedis(ctx context.Context, host, password string) (*redis.Client, error) {
	if host == "" {
		return nil, fmt.Errorf("REDIS_HOST non configuré")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         host,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %v", err)
	}

	log.Println("✅ Redis connecté avec succès")
	return client, nil
}

// --- Rate Limiting ---

// Counters incrémente des compteurs à fenêtre glissante (INCR + EXPIRE).
type Counters struct {
	rdb *redis.Client
}

func NewCounters(rdb *redis.Client) *Counters { return &Counters{rdb: rdb} }

func (c *Counters) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
