package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"

	// cookie carrying the JWT after a successful callback
	TokenCookie = "academy_token"

	DefaultTokenTTL = 7 * 24 * time.Hour

	// used when no callback timeout is configured
	defaultProviderTimeout = 5 * time.Second
)

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// issues and validates HS256 tokens
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}
