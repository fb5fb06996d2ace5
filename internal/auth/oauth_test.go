package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidersOnlyConfigured(t *testing.T) {
	assert.Empty(t, Providers(OAuthConfig{BaseURL: "http://localhost:4000"}))

	providers := Providers(OAuthConfig{
		BaseURL: "http://localhost:4000",
		Google:  ProviderConfig{ClientID: "id", ClientSecret: "secret"},
	})
	require.Len(t, providers, 1)
	assert.Equal(t, "google", providers[0].Name())
}

func TestSetupRequiresSessionSecret(t *testing.T) {
	assert.False(t, Setup(OAuthConfig{Google: ProviderConfig{ClientID: "id", ClientSecret: "secret"}}))
}

func TestNewSessionStore(t *testing.T) {
	store := NewSessionStore("0123456789abcdef0123456789abcdef", true)
	assert.True(t, store.Options.HttpOnly)
	assert.True(t, store.Options.Secure)
	assert.Equal(t, sessionMaxAge, store.Options.MaxAge)
}
