package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/algopatterns/academy/internal/config"
	"codeberg.org/algopatterns/academy/internal/logger"
)

// @title Academy API
// @version 1.0
// @description Learner-facing backend of the algopatterns academy
// @description
// @description Features:
// @description - OAuth sign-in (Google, GitHub) with a bounded-time callback redirect
// @description - Learner profiles with progress counters
// @description - Idempotent achievement awarding

// @contact.name API Support
// @contact.url https://codeberg.org/algopatterns/academy

// @license.name GPL-3.0
// @license.url https://www.gnu.org/licenses/gpl-3.0.html

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.Configure(cfg.Environment)
	logger.Info("starting academy server", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// create server with all dependencies
	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: srv.router,
		// in-flight callbacks get their request context cancelled on shutdown
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// wait for interrupt signal for graceful shutdown
	<-ctx.Done()
	stop()

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.Close()

	logger.Info("server stopped")
}
