package utils

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/apperr"
)

// OK répond {"success": true, ...extra}.
func OK(c *gin.Context, status int, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// Fail traduit l'erreur en code HTTP et répond avec l'enveloppe d'échec.
func Fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	msg := apperr.Message(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "Erreur serveur"
	} else if status == http.StatusBadGateway {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"success": false, "message": msg})
}

// BadRequest couvre les erreurs de binding gin.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": msg})
}
