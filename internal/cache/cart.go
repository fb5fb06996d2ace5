package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"dermodazzle_back_end/internal/cart"
)

const CartTTL = 30 * 24 * time.Hour // 30 jours

// Les scripts bornent la quantité côté Redis pour que deux requêtes
// concurrentes ne dépassent jamais le maximum.
var (
	cartAddScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
local qty = tonumber(ARGV[2])
if qty < 1 then qty = 1 end
local n = cur + qty
if n > tonumber(ARGV[3]) then n = tonumber(ARGV[3]) end
redis.call('HSET', KEYS[1], ARGV[1], n)
redis.call('EXPIRE', KEYS[1], ARGV[4])
redis.call('PUBLISH', KEYS[1], 'updated')
return n`)

	cartSetScript = redis.NewScript(`
local qty = tonumber(ARGV[2])
if qty < 1 then
  redis.call('HDEL', KEYS[1], ARGV[1])
else
  if qty > tonumber(ARGV[3]) then qty = tonumber(ARGV[3]) end
  redis.call('HSET', KEYS[1], ARGV[1], qty)
  redis.call('EXPIRE', KEYS[1], ARGV[4])
end
redis.call('PUBLISH', KEYS[1], 'updated')
return qty`)
)

func CartKey(userID string) string { return "cart:" + userID }

// CartStore est le panier serveur : un hash Redis par utilisateur
// (produit → quantité), publié sur le canal du même nom à chaque changement.
type CartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) *CartStore { return &CartStore{rdb: rdb} }

func (s *CartStore) Load(ctx context.Context, userID string) (cart.Items, error) {
	raw, err := s.rdb.HGetAll(ctx, CartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
	return parseItems(raw), nil
}

func (s *CartStore) Add(ctx context.Context, userID, productID string, qty int) (int, error) {
	n, err := cartAddScript.Run(ctx, s.rdb, []string{CartKey(userID)},
		productID, qty, cart.MaxQuantity, int(CartTTL.Seconds())).Int()
	if err != nil {
		return 0, fmt.Errorf("ajout panier: %w", err)
	}
	return n, nil
}

func (s *CartStore) Set(ctx context.Context, userID, productID string, qty int) error {
	err := cartSetScript.Run(ctx, s.rdb, []string{CartKey(userID)},
		productID, qty, cart.MaxQuantity, int(CartTTL.Seconds())).Err()
	if err != nil {
		return fmt.Errorf("mise à jour panier: %w", err)
	}
	return nil
}

func (s *CartStore) Remove(ctx context.Context, userID, productID string) error {
	return s.Set(ctx, userID, productID, 0)
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	key := CartKey(userID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Publish(ctx, key, "cleared")
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}

// Watch relaie les notifications pub/sub du panier ; stop ferme l'abonnement.
func (s *CartStore) Watch(ctx context.Context, userID string) (<-chan string, func(), error) {
	pubsub := s.rdb.Subscribe(ctx, CartKey(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("abonnement panier: %w", err)
	}

	out := make(chan string, 8)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			default:
				log.Printf("⚠️ Notification panier ignorée pour %s", userID)
			}
		}
	}()
	return out, func() { _ = pubsub.Close() }, nil
}

func parseItems(raw map[string]string) cart.Items {
	items := make(cart.Items, len(raw))
	for productID, v := range raw {
		qty, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		items[productID] = qty
	}
	return items.Normalize()
}
