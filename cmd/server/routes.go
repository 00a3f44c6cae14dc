package main

import (
	restachievements "codeberg.org/algopatterns/academy/api/rest/achievements"
	restauth "codeberg.org/algopatterns/academy/api/rest/auth"
	"codeberg.org/algopatterns/academy/api/rest/health"
	restprofiles "codeberg.org/algopatterns/academy/api/rest/profiles"
	"codeberg.org/algopatterns/academy/internal/logger"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	cfg := server.config

	rateLimit, err := RateLimitMiddleware(cfg.RateLimit, server.redis, "academy:"+cfg.Region+":limiter")
	if err != nil {
		return err
	}

	router.Use(logger.Middleware())
	router.Use(CORSMiddleware(cfg.FrontendURL))

	router.GET("/health", health.Handler(cfg.StoreBackend))

	v1 := router.Group("/api/v1")
	v1.Use(rateLimit)
	{
		v1.GET("/ping", health.PingHandler)

		restauth.RegisterRoutes(v1, &restauth.Deps{
			Profiles:        server.profiles,
			Tokens:          server.tokens,
			Sessions:        server.sessions,
			Providers:       server.providers,
			FrontendURL:     cfg.FrontendURL,
			CallbackTimeout: cfg.CallbackTimeout,
			SecureCookies:   cfg.IsHTTPS(),
		})
		restprofiles.RegisterRoutes(v1, server.profiles, server.tokens)
		restachievements.RegisterRoutes(v1, server.achievements, server.tokens)
	}

	return nil
}
