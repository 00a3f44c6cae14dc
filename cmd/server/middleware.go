package main

import (
	"fmt"
	"net/http"
	"time"

	"codeberg.org/algopatterns/academy/internal/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// allows the learner front end to call the API with credentials
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// per-client rate limit, counters in redis when available so replicas share them
func RateLimitMiddleware(formatted string, client *redis.Client, prefix string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", formatted, err)
	}

	var limitStore limiter.Store

	if client != nil {
		limitStore, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit store: %w", err)
		}
	} else {
		limitStore = memory.NewStore()
	}

	return mgin.NewMiddleware(
		limiter.New(limitStore, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "rate limit exceeded, slow down")
		}),
	), nil
}
