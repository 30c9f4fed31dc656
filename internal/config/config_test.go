package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv() map[string]string {
	return map[string]string{
		"HUBSPOT_CLIENT_ID":     "client-id",
		"HUBSPOT_CLIENT_SECRET": "client-secret",
		"HUBSPOT_REDIRECT_URI":  "http://localhost:8000/integrations/hubspot/oauth2callback",
		"REDIS_URL":             "redis://localhost:6379/0",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(validEnv())
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"oauth", "crm.objects.contacts.read", "crm.schemas.contacts.read"}, cfg.HubSpot.Scopes)
	assert.Equal(t, "https://app.hubspot.com/oauth/authorize", cfg.HubSpot.AuthURL)
	assert.Equal(t, "https://api.hubapi.com/oauth/v1/token", cfg.HubSpot.TokenURL)
	assert.Equal(t, "https://api.hubapi.com", cfg.HubSpot.APIBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.JanitorInterval)
	assert.Equal(t, "redis", cfg.StoreBackend())
}

func TestLoadFrom_Overrides(t *testing.T) {
	environ := validEnv()
	environ["PORT"] = "9000"
	environ["LOG_LEVEL"] = "debug"
	environ["CORS_ALLOWED_ORIGINS"] = "https://a.example.com,https://b.example.com"
	environ["HUBSPOT_SCOPES"] = "oauth crm.objects.contacts.read"
	environ["JANITOR_INTERVAL"] = "30s"

	cfg, err := LoadFrom(environ)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"oauth", "crm.objects.contacts.read"}, cfg.HubSpot.Scopes)
	assert.Equal(t, 30*time.Second, cfg.JanitorInterval)
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	for key, value := range map[string]string{
		"PORT":             "eighty",
		"JANITOR_INTERVAL": "soon",
		"LOG_LEVEL":        "loud",
	} {
		environ := validEnv()
		environ[key] = value
		_, err := LoadFrom(environ)
		assert.Error(t, err, key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		unset  string
		errMsg string
	}{
		{"client id", "HUBSPOT_CLIENT_ID", "HUBSPOT_CLIENT_ID"},
		{"client secret", "HUBSPOT_CLIENT_SECRET", "HUBSPOT_CLIENT_SECRET"},
		{"redirect uri", "HUBSPOT_REDIRECT_URI", "HUBSPOT_REDIRECT_URI"},
		{"store", "REDIS_URL", "REDIS_URL or DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := validEnv()
			delete(environ, tt.unset)

			cfg, err := LoadFrom(environ)
			require.NoError(t, err)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"HUBSPOT_CLIENT_ID", "HUBSPOT_CLIENT_SECRET", "HUBSPOT_REDIRECT_URI", "DATABASE_URL"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestStoreBackend(t *testing.T) {
	environ := validEnv()
	environ["DATABASE_URL"] = "postgres://localhost/sercha"

	cfg, _ := LoadFrom(environ)
	assert.Equal(t, "redis", cfg.StoreBackend(), "redis wins when both are set")

	delete(environ, "REDIS_URL")
	cfg, _ = LoadFrom(environ)
	assert.Equal(t, "postgres", cfg.StoreBackend())

	delete(environ, "DATABASE_URL")
	cfg, _ = LoadFrom(environ)
	assert.Equal(t, "", cfg.StoreBackend())
}

func TestConnector(t *testing.T) {
	cfg, err := LoadFrom(validEnv())
	require.NoError(t, err)

	hs := cfg.Connector()
	assert.Equal(t, "client-id", hs.ClientID)
	assert.Equal(t, "client-secret", hs.ClientSecret)
	assert.Equal(t, "http://localhost:8000/integrations/hubspot/oauth2callback", hs.RedirectURI)
	assert.Equal(t, 10, hs.PageSize)
	assert.Equal(t, 30*time.Second, hs.Timeout)
	assert.Len(t, hs.Scopes, 3)
}
