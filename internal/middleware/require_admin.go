package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/utils"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	if c.GetString("role") != utils.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Accès réservé aux administrateurs"})
		return
	}
	c.Next()
}
