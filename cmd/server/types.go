package main

import (
	"codeberg.org/algopatterns/academy/academy/achievements"
	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/auth"
	"codeberg.org/algopatterns/academy/internal/config"
	"codeberg.org/algopatterns/academy/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	config *config.Config

	// nil unless the postgres backend is selected
	db *pgxpool.Pool
	// shared by the redis store and the rate limiter, nil when neither uses redis
	redis *redis.Client
	store store.Store

	profiles     *profiles.Repository
	achievements *achievements.Service
	tokens       *auth.Tokens
	sessions     sessions.Store
	providers    []string

	router *gin.Engine
}
