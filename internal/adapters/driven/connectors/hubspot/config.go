package hubspot

import (
	"strings"
	"time"
)

// Default endpoints and scopes for HubSpot.
const (
	DefaultAuthURL    = "https://app.hubspot.com/oauth/authorize"
	DefaultTokenURL   = "https://api.hubapi.com/oauth/v1/token"
	DefaultAPIBaseURL = "https://api.hubapi.com"
	DefaultScopes     = "oauth crm.objects.contacts.read crm.schemas.contacts.read"
)

// Config contains configuration for the HubSpot connector.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Scopes requested during authorization.
	Scopes []string

	AuthURL  string
	TokenURL string

	// APIBaseURL is the base URL for the CRM API.
	APIBaseURL string

	// PageSize is the number of contacts requested per page.
	PageSize int

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns the default HubSpot connector configuration.
func DefaultConfig() *Config {
	return &Config{
		Scopes:     strings.Fields(DefaultScopes),
		AuthURL:    DefaultAuthURL,
		TokenURL:   DefaultTokenURL,
		APIBaseURL: DefaultAPIBaseURL,
		PageSize:   10,
		Timeout:    30 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.Scopes) == 0 {
		c.Scopes = d.Scopes
	}
	if c.AuthURL == "" {
		c.AuthURL = d.AuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = d.TokenURL
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = d.APIBaseURL
	}
	c.APIBaseURL = strings.TrimSuffix(c.APIBaseURL, "/")
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}
