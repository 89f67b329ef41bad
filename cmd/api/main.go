package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"better-being/internal/config"
	"better-being/internal/database"
	"better-being/internal/events"
	"better-being/internal/handler"
	"better-being/internal/receipt"
	"better-being/internal/repository"
	"better-being/internal/router"
	"better-being/internal/service"
	"better-being/internal/validation"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("env", cfg.Env).Msg("starting better-being API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	loyaltyRepo := repository.NewLoyaltyRepository(pool, logger)

	publisher := newPublisher(ctx, cfg.SQS, logger)
	receipts := newReceiptStore(ctx, cfg, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	loyaltyService := service.NewLoyaltyService(loyaltyRepo, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		Orders:   orderRepo,
		Products: productRepo,
		Cart:     cartRepo,
		Loyalty:  loyaltyRepo,
		Events:   publisher,
		Receipts: receipts,
	}, service.NewPricing(cfg.Order), cfg.Order.NumberAttempts, logger)

	// Initialize HTTP handlers
	validate := validation.New()
	opts := handler.Options{ExposeErrors: !cfg.IsProduction()}

	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, opts, logger),
		Orders:   handler.NewOrderHandler(orderService, validate, opts, logger),
		Cart:     handler.NewCartHandler(cartService, validate, opts, logger),
		Loyalty:  handler.NewLoyaltyHandler(loyaltyService, validate, opts, logger),
	}, router.Security{
		APIKey:         cfg.Auth.APIKey,
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newPublisher returns the SQS publisher when enabled, falling back to
// logging events when the queue client cannot be created.
func newPublisher(ctx context.Context, cfg config.SQSConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("order events are logged only (SQS disabled)")
		return events.NewLogPublisher(logger)
	}

	publisher, err := events.NewSQSPublisher(ctx, cfg.QueueURL, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise SQS publisher, falling back to logging events")
		return events.NewLogPublisher(logger)
	}
	return publisher
}

// newReceiptStore returns nil when receipts are disabled. With S3 enabled,
// receipts go to the bucket and fall back to the local directory.
func newReceiptStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) receipt.Store {
	if !cfg.Receipt.Enabled {
		logger.Info().Msg("receipt archive disabled")
		return nil
	}

	fileStore := receipt.NewFileStore(cfg.Receipt.Dir, logger)
	if !cfg.S3.Enabled {
		logger.Info().Str("dir", cfg.Receipt.Dir).Msg("archiving receipts on the local file system (S3 disabled)")
		return fileStore
	}

	s3Store, err := receipt.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 receipt store, falling back to local file system only")
		return fileStore
	}
	return receipt.NewFallbackStore(s3Store, fileStore, logger)
}
