package config

import "time"

// persistence backends selectable with STORE_BACKEND
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	Environment string
	Port        string

	// public URL of this API, used to build OAuth redirect URIs
	BaseURL string
	// origin of the learner front end that owns /login and /modules
	FrontendURL string

	SessionSecret string
	JWTSecret     string

	Google OAuthClient
	GitHub OAuthClient

	// redirect URI path template, "{provider}" is substituted per provider
	CallbackPath string

	StoreBackend      string
	DatabaseURL       string
	RedisURL          string
	Region            string
	ProfilesTable     string
	AchievementsTable string

	CatalogPath     string
	CallbackTimeout time.Duration
	RateLimit       string
}

// identity provider client registration
type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

// reports whether both halves of the registration are present
func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
