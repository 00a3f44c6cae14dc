package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/algopatterns/academy/academy/achievements"
	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/auth"
	"codeberg.org/algopatterns/academy/internal/config"
	"codeberg.org/algopatterns/academy/internal/logger"
	"codeberg.org/algopatterns/academy/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 10 * time.Second

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	catalog, err := achievements.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
	}

	server := &Server{config: cfg}

	if err := server.openStore(ctx); err != nil {
		return nil, err
	}

	// the limiter can share redis even when the documents live elsewhere
	if server.redis == nil && cfg.RedisURL != "" {
		client, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			server.Close()
			return nil, err
		}

		server.redis = client
	}

	server.sessions = auth.NewSessionStore(cfg)

	providers, err := auth.InitializeProviders(cfg, server.sessions)
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to initialize OAuth providers: %w", err)
	}

	server.providers = providers
	server.tokens = auth.NewTokens(cfg.JWTSecret)
	server.profiles = profiles.NewRepository(server.store, cfg.ProfilesTable)
	server.achievements = achievements.NewService(server.store, cfg.AchievementsTable, server.profiles, catalog)

	logger.Info("server dependencies ready",
		"store", cfg.StoreBackend,
		"region", cfg.Region,
		"providers", providers,
		"achievements", catalog.Len(),
		"rate_limit_store", ternary(server.redis != nil, "redis", "memory"),
	)

	gin.SetMode(ternary(cfg.Environment == "production", gin.ReleaseMode, gin.DebugMode))
	server.router = gin.New()
	server.router.Use(gin.Recovery())

	if err := RegisterRoutes(server.router, server); err != nil {
		server.Close()
		return nil, err
	}

	return server, nil
}

// connects the configured persistence backend
func (s *Server) openStore(ctx context.Context) error {
	cfg := s.config

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := connectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}

		pg := store.NewPostgresStore(db)
		if err := pg.Initialize(ctx, cfg.ProfilesTable, cfg.AchievementsTable); err != nil {
			db.Close()
			return fmt.Errorf("failed to initialize tables: %w", err)
		}

		s.db = db
		s.store = pg

	case config.BackendRedis:
		rs, err := store.NewRedisStoreFromURL(cfg.RedisURL, cfg.Region)
		if err != nil {
			return fmt.Errorf("failed to initialize redis store: %w", err)
		}

		s.redis = rs.Client()
		s.store = rs

	case config.BackendMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		s.store = store.NewMemoryStore()

	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	return nil
}

func connectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// small pool, the API only issues short single-row statements
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgbouncer in transaction mode does not support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(connectCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(connectCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// releases the store and connections, safe on a partially built server
func (s *Server) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.ErrorErr(err, "failed to close store")
		}
	}

	// the redis store already closed a shared client
	if s.redis != nil && s.config.StoreBackend != config.BackendRedis {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	if s.db != nil {
		s.db.Close()
	}
}

func ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
