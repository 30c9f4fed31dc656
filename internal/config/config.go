package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/sercha-hubspot/internal/adapters/driven/connectors/hubspot"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Host     string     `env:"HOST" envDefault:"0.0.0.0"`
	Port     int        `env:"PORT" envDefault:"8000"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// RedisURL selects the Redis store. Preferred over DatabaseURL.
	RedisURL string `env:"REDIS_URL"`

	// DatabaseURL selects the PostgreSQL store when RedisURL is empty.
	DatabaseURL string `env:"DATABASE_URL"`

	// MasterKey enables encryption of stored values.
	MasterKey string `env:"SERCHA_MASTER_KEY"`

	// JWTSecret enables caller authentication.
	JWTSecret string `env:"SERCHA_JWT_SECRET"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	HubSpot HubSpotConfig

	// JanitorInterval is how often expired PostgreSQL rows are purged.
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"5m"`
}

// HubSpotConfig holds the OAuth application and endpoint settings.
type HubSpotConfig struct {
	ClientID     string   `env:"HUBSPOT_CLIENT_ID"`
	ClientSecret string   `env:"HUBSPOT_CLIENT_SECRET"`
	RedirectURI  string   `env:"HUBSPOT_REDIRECT_URI"`
	Scopes       []string `env:"HUBSPOT_SCOPES" envDefault:"oauth crm.objects.contacts.read crm.schemas.contacts.read" envSeparator:" "`
	AuthURL      string   `env:"HUBSPOT_AUTH_URL" envDefault:"https://app.hubspot.com/oauth/authorize"`
	TokenURL     string   `env:"HUBSPOT_TOKEN_URL" envDefault:"https://api.hubapi.com/oauth/v1/token"`
	APIBaseURL   string   `env:"HUBSPOT_API_BASE_URL" envDefault:"https://api.hubapi.com"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.HubSpot.ClientID == "" {
		errs = append(errs, errors.New("HUBSPOT_CLIENT_ID is required"))
	}
	if c.HubSpot.ClientSecret == "" {
		errs = append(errs, errors.New("HUBSPOT_CLIENT_SECRET is required"))
	}
	if c.HubSpot.RedirectURI == "" {
		errs = append(errs, errors.New("HUBSPOT_REDIRECT_URI is required"))
	}
	if c.RedisURL == "" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("one of REDIS_URL or DATABASE_URL is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.JanitorInterval <= 0 {
		errs = append(errs, errors.New("JANITOR_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

// Connector returns the HubSpot connector configuration.
func (c *Config) Connector() hubspot.Config {
	cfg := *hubspot.DefaultConfig()
	cfg.ClientID = c.HubSpot.ClientID
	cfg.ClientSecret = c.HubSpot.ClientSecret
	cfg.RedirectURI = c.HubSpot.RedirectURI
	if len(c.HubSpot.Scopes) > 0 {
		cfg.Scopes = c.HubSpot.Scopes
	}
	if c.HubSpot.AuthURL != "" {
		cfg.AuthURL = c.HubSpot.AuthURL
	}
	if c.HubSpot.TokenURL != "" {
		cfg.TokenURL = c.HubSpot.TokenURL
	}
	if c.HubSpot.APIBaseURL != "" {
		cfg.APIBaseURL = c.HubSpot.APIBaseURL
	}
	return cfg
}

// StoreBackend names the store selected by the configuration.
func (c *Config) StoreBackend() string {
	switch {
	case c.RedisURL != "":
		return "redis"
	case c.DatabaseURL != "":
		return "postgres"
	default:
		return ""
	}
}
