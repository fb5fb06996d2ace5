package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter incrémente un compteur qui expire après ttl.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Limit autorise Max requêtes par Window et par clé.
type Limit struct {
	Name    string
	Max     int64
	Window  time.Duration
	Message string
	Key     func(c *gin.Context) string
}

func ByIP(c *gin.Context) string { return c.ClientIP() }

func ByUser(c *gin.Context) string {
	if id := c.GetString("user_id"); id != "" {
		return id
	}
	return c.ClientIP()
}

var (
	// Max 20 modifications de panier par minute
	CartLimit = Limit{Name: "cart", Max: 20, Window: time.Minute, Key: ByUser,
		Message: "Trop de modifications du panier. Ralentissez un peu"}
	SubscribeLimit = Limit{Name: "subscribe", Max: 5, Window: time.Minute, Key: ByIP,
		Message: "Trop d'inscriptions. Réessayez dans 1 minute"}
	ContactLimit = Limit{Name: "contact", Max: 5, Window: time.Minute, Key: ByIP,
		Message: "Trop de messages. Réessayez dans 1 minute"}
	LoginLimit = Limit{Name: "login", Max: 10, Window: time.Minute, Key: ByIP,
		Message: "Trop de tentatives de connexion. Réessayez dans 1 minute"}
)

// RateLimit refuse avec 429 au-delà de la limite. Si le compteur est
// indisponible la requête passe.
func RateLimit(counter Counter, limit Limit) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + limit.Name + ":" + limit.Key(c)
		n, err := counter.Incr(c.Request.Context(), key, limit.Window)
		if err != nil {
			log.Printf("⚠️ Rate limit %s indisponible: %v", limit.Name, err)
			c.Next()
			return
		}

		remaining := limit.Max - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit.Max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if n > limit.Max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     limit.Message,
				"retry_after": int(limit.Window.Seconds()),
			})
			return
		}
		c.Next()
	}
}
