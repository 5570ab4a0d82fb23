package access

import (
	"time"

	"github.com/dmitrymomot/biportal/pkg/subscription"
)

// Config is read from ACCESS_* environment variables.
type Config struct {
	FetchTimeout    time.Duration `env:"ACCESS_FETCH_TIMEOUT" envDefault:"10s"`
	RetryInterval   time.Duration `env:"ACCESS_RETRY_INTERVAL" envDefault:"1s"`
	GracePeriodDays int           `env:"ACCESS_GRACE_PERIOD_DAYS" envDefault:"30"`
	SessionCapacity int           `env:"ACCESS_SESSION_CAPACITY" envDefault:"10000"`
	SessionTTL      time.Duration `env:"ACCESS_SESSION_TTL" envDefault:"12h"`

	// CatalogRefresh is the feature catalog reload period; zero disables it.
	CatalogRefresh      time.Duration `env:"ACCESS_CATALOG_REFRESH" envDefault:"5m"`
	CatalogMissInterval time.Duration `env:"ACCESS_CATALOG_MISS_INTERVAL" envDefault:"30s"`

	AuthURL    string `env:"ACCESS_AUTH_URL" envDefault:"/login"`
	LandingURL string `env:"ACCESS_LANDING_URL" envDefault:"/"`
	PlansURL   string `env:"ACCESS_PLANS_URL" envDefault:"/plans"`
	SignOutURL string `env:"ACCESS_SIGN_OUT_URL" envDefault:"/session/logout"`
}

// DefaultConfig mirrors the env defaults for callers that do not load env.
func DefaultConfig() Config {
	return Config{
		FetchTimeout:    10 * time.Second,
		RetryInterval:   time.Second,
		GracePeriodDays: subscription.DefaultGracePeriodDays,
		SessionCapacity: 10000,
		SessionTTL:      12 * time.Hour,

		CatalogRefresh:      5 * time.Minute,
		CatalogMissInterval: 30 * time.Second,
		AuthURL:         "/login",
		LandingURL:      "/",
		PlansURL:        "/plans",
		SignOutURL:      "/session/logout",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = d.RetryInterval
	}
	if c.GracePeriodDays <= 0 {
		c.GracePeriodDays = d.GracePeriodDays
	}
	if c.SessionCapacity <= 0 {
		c.SessionCapacity = d.SessionCapacity
	}
	if c.AuthURL == "" {
		c.AuthURL = d.AuthURL
	}
	if c.LandingURL == "" {
		c.LandingURL = d.LandingURL
	}
	if c.PlansURL == "" {
		c.PlansURL = d.PlansURL
	}
	if c.SignOutURL == "" {
		c.SignOutURL = d.SignOutURL
	}
	return c
}
