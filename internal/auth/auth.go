package auth

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"codeberg.org/algopatterns/academy/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
)

// builds the cookie store shared by gothic and the status flashes
func NewSessionStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	// long enough for the OAuth round trip plus the front end reading the flash
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   cfg.IsHTTPS(),
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

// registers the configured OAuth providers with goth and returns their names
func InitializeProviders(cfg *config.Config, store sessions.Store) ([]string, error) {
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must be set")
	}

	if !cfg.Google.Enabled() {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	gothic.Store = store

	// goth drops the request context, so the client timeout is what bounds a hung provider
	client := providerClient(cfg.CallbackTimeout)

	g := google.New(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.CallbackURL(ProviderGoogle),
		"email", "profile",
	)
	g.HTTPClient = client

	providers := []goth.Provider{g}

	if cfg.GitHub.Enabled() {
		gh := github.New(
			cfg.GitHub.ClientID,
			cfg.GitHub.ClientSecret,
			cfg.CallbackURL(ProviderGitHub),
			"user:email",
		)
		gh.HTTPClient = client

		providers = append(providers, gh)
	}

	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}

	slices.Sort(names)
	return names, nil
}

// http client for provider token and profile calls
func providerClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	return &http.Client{Timeout: timeout}
}

// stable profile id for a provider account
func ProfileID(provider, providerUserID string) string {
	return provider + ":" + providerUserID
}

func NewTokens(secret string) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
}

// lifetime of issued tokens
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// creates a JWT token for the user
func (t *Tokens) Generate(userID, email string) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("JWT_SECRET not set")
	}

	now := t.now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// validates a JWT token and returns the claims
func (t *Tokens) Validate(tokenString string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.UserID == "" {
			return nil, fmt.Errorf("token carries no user id")
		}

		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
