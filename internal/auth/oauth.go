// Package auth configure la connexion sociale (goth) et son store de session.
package auth

import (
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
)

type ProviderConfig struct {
	ClientID     string
	ClientSecret string
}

type OAuthConfig struct {
	BaseURL       string
	SessionSecret string
	SecureCookies bool
	Google        ProviderConfig
	Facebook      ProviderConfig
}

// sessionMaxAge couvre l'aller-retour chez le provider.
const sessionMaxAge = 10 * 60

// NewSessionStore garde l'état OAuth dans un cookie signé.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(sessionMaxAge)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Providers construit les providers configurés ; callback = BaseURL/api/auth/<nom>/callback.
func Providers(cfg OAuthConfig) []goth.Provider {
	var providers []goth.Provider
	if cfg.Google.ClientID != "" && cfg.Google.ClientSecret != "" {
		providers = append(providers, google.New(cfg.Google.ClientID, cfg.Google.ClientSecret,
			cfg.BaseURL+"/api/auth/google/callback", "email", "profile"))
	}
	if cfg.Facebook.ClientID != "" && cfg.Facebook.ClientSecret != "" {
		providers = append(providers, facebook.New(cfg.Facebook.ClientID, cfg.Facebook.ClientSecret,
			cfg.BaseURL+"/api/auth/facebook/callback", "email"))
	}
	return providers
}

// Setup enregistre les providers auprès de goth. Retourne false si aucun
// n'est configuré : les routes OAuth ne sont alors pas montées.
func Setup(cfg OAuthConfig) bool {
	providers := Providers(cfg)
	if len(providers) == 0 {
		log.Println("⚠️ Aucun provider OAuth configuré")
		return false
	}
	if cfg.SessionSecret == "" {
		log.Println("⚠️ SESSION_SECRET manquant, OAuth désactivé")
		return false
	}

	gothic.Store = NewSessionStore(cfg.SessionSecret, cfg.SecureCookies)
	goth.UseProviders(providers...)
	log.Printf("✅ %d OAuth provider(s) initialisé(s)", len(providers))
	return true
}
