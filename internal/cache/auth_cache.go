package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const AuthCacheTTL = 15 * time.Minute

// LoginCache mémorise les vérifications de mot de passe réussies pour
// éviter de refaire le hachage à chaque connexion.
type LoginCache struct {
	rdb *redis.Client
}

func NewLoginCache(rdb *redis.Client) *LoginCache { return &LoginCache{rdb: rdb} }

// authKey dépend aussi du hash stocké : un changement de mot de passe
// invalide l'entrée.
func authKey(email, password, storedHash string) string {
	sum := sha256.Sum256([]byte(password + "\x00" + storedHash))
	return "auth:" + email + ":" + hex.EncodeToString(sum[:])
}

func (c *LoginCache) Verified(ctx context.Context, email, password, storedHash string) bool {
	result, err := c.rdb.Get(ctx, authKey(email, password, storedHash)).Result()
	return err == nil && result == "valid"
}

func (c *LoginCache) Remember(ctx context.Context, email, password, storedHash string) {
	c.rdb.Set(ctx, authKey(email, password, storedHash), "valid", AuthCacheTTL)
}

// Forget supprime toutes les entrées d'un email.
func (c *LoginCache) Forget(ctx context.Context, email string) {
	iter := c.rdb.Scan(ctx, 0, "auth:"+email+":*", 100).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
}
