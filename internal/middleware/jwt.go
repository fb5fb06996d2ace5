package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/utils"
)

// TokenParser vérifie un jeton et en extrait les claims.
type TokenParser interface {
	Parse(token string) (*utils.Claims, error)
}

// AuthRequired accepte le header "token", un "Authorization: Bearer"
// ou, pour les websockets, le paramètre ?token=.
func AuthRequired(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokens.Parse(tokenFrom(c))
		if err != nil {
			utils.Fail(c, err)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func tokenFrom(c *gin.Context) string {
	if t := c.GetHeader("token"); t != "" {
		return t
	}
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}
