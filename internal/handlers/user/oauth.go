package user

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"dermodazzle_back_end/internal/utils"
)

// gothic lit le provider dans la query string.
func withProvider(c *gin.Context) bool {
	provider := c.Param("provider")
	if provider == "" {
		utils.BadRequest(c, "aucun provider spécifié")
		return false
	}
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	return true
}

// GET /api/auth/:provider
func (h *AuthHandler) BeginOAuth(c *gin.Context) {
	if !withProvider(c) {
		return
	}
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// GET /api/auth/:provider/callback
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	if !withProvider(c) {
		return
	}
	gu, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ OAuth %s: %v", c.Param("provider"), err)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=oauth")
		return
	}

	name := gu.Name
	if name == "" {
		name = gu.NickName
	}
	user, err := h.users.UpsertOAuth(c.Request.Context(), gu.Provider, gu.UserID, gu.Email, name)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	token, err := h.tokens.Issue(user.ID.Hex(), user.Email, utils.RoleUser)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	log.Printf("✅ Connexion %s pour %s", gu.Provider, user.Email)
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?token="+url.QueryEscape(token))
}
