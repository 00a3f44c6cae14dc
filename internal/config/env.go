package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort              = "8080"
	defaultCallbackPath      = "/api/v1/auth/{provider}/callback"
	defaultRegion            = "local"
	defaultProfilesTable     = "user_profiles"
	defaultAchievementsTable = "user_achievements"
	defaultCallbackTimeout   = 5 * time.Second
	defaultRateLimit         = "100-M"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Environment:   envOr("ENVIRONMENT", "development"),
		Port:          envOr("PORT", defaultPort),
		BaseURL:       strings.TrimSuffix(os.Getenv("BASE_URL"), "/"),
		FrontendURL:   strings.TrimSuffix(os.Getenv("FRONTEND_URL"), "/"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Google: OAuthClient{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
		GitHub: OAuthClient{
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		},
		CallbackPath:      envOr("AUTH_CALLBACK_PATH", defaultCallbackPath),
		StoreBackend:      strings.ToLower(envOr("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		Region:            envOr("STORE_REGION", defaultRegion),
		ProfilesTable:     envOr("PROFILES_TABLE", defaultProfilesTable),
		AchievementsTable: envOr("ACHIEVEMENTS_TABLE", defaultAchievementsTable),
		CatalogPath:       os.Getenv("ACHIEVEMENT_CATALOG_PATH"),
		CallbackTimeout:   defaultCallbackTimeout,
		RateLimit:         envOr("RATE_LIMIT", defaultRateLimit),
	}

	if raw := os.Getenv("CALLBACK_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("CALLBACK_TIMEOUT must be a duration: %w", err)
		}

		if timeout <= 0 {
			return nil, fmt.Errorf("CALLBACK_TIMEOUT must be positive")
		}

		cfg.CallbackTimeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checks required settings for non-emptiness
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"BASE_URL", c.BaseURL},
		{"FRONTEND_URL", c.FrontendURL},
		{"SESSION_SECRET", c.SessionSecret},
		{"JWT_SECRET", c.JWTSecret},
		{"GOOGLE_CLIENT_ID", c.Google.ClientID},
		{"GOOGLE_CLIENT_SECRET", c.Google.ClientSecret},
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s environment variable is required", r.name)
		}
	}

	if !strings.Contains(c.CallbackPath, "{provider}") {
		return fmt.Errorf("AUTH_CALLBACK_PATH must contain {provider}")
	}

	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL environment variable is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of postgres, redis, memory (got %q)", c.StoreBackend)
	}

	if c.ProfilesTable == c.AchievementsTable {
		return fmt.Errorf("PROFILES_TABLE and ACHIEVEMENTS_TABLE must differ")
	}

	return nil
}

// builds the OAuth redirect URI for a provider
func (c *Config) CallbackURL(provider string) string {
	return c.BaseURL + strings.ReplaceAll(c.CallbackPath, "{provider}", provider)
}

// reports whether cookies should carry the Secure flag
func (c *Config) IsHTTPS() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
