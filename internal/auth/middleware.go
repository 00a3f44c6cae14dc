package auth

import (
	"strings"

	"codeberg.org/algopatterns/academy/internal/errors"
	"github.com/gin-gonic/gin"
)

// validates JWT tokens and adds user info to context
func AuthMiddleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			errors.Unauthorized(c, "authorization header or token cookie required")
			c.Abort()
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}

// validates JWT if present but doesn't require it
func OptionalAuthMiddleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := extractToken(c); ok {
			if claims, err := tokens.Validate(token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("user_email", claims.Email)
			}
		}

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	return userID, userID != ""
}

// extracts user_email from context after AuthMiddleware
func GetUserEmail(c *gin.Context) string {
	return c.GetString("user_email")
}

// bearer header first, then the cookie set by the callback
func extractToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}

		return parts[1], true
	}

	cookie, err := c.Cookie(TokenCookie)
	if err != nil || cookie == "" {
		return "", false
	}

	return cookie, true
}
