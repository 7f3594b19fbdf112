package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"smartfetch/infrastructure/config"
	"smartfetch/infrastructure/di"
	"smartfetch/interfaces/http/rest"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// The startup health probe runs during container construction, so a slow
	// model runtime delays boot instead of the first request.
	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing container: %w", err)
	}
	defer container.Shutdown()

	router := rest.NewRouter(
		container.Config,
		container.DomainConfig,
		container.QueryBus,
		container.AgentService,
		container.Snapshot,
		container.Metrics,
		container.RateLimiter,
		container.Logger,
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		container.Logger.Info("starting server",
			zap.String("address", cfg.Addr()),
			zap.String("environment", cfg.Environment),
			zap.String("health_status", string(container.Snapshot.Status)),
			zap.Int("resources_loaded", container.Snapshot.ResourcesLoaded),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	container.Logger.Info("shutting down server")

	// The signal context is already canceled here; the shutdown deadline
	// needs its own.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	container.Logger.Info("server stopped")
	return nil
}
