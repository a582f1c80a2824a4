package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pricehunt/backend/config"
	"github.com/pricehunt/backend/internal/app"
	httpDelivery "github.com/pricehunt/backend/internal/delivery/http"
	"github.com/pricehunt/backend/internal/infrastructure/logging"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	format := cfg.Log.Format
	if cfg.Server.Environment == "development" {
		format = "console"
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, format)

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Bool("real_scraping", cfg.Scraper.RealScrapingEnabled).
		Msg("starting PriceHunt backend v1.0.0")

	searchService := app.NewSearchService(cfg, logger)

	logger.Info().
		Float64("similarity_threshold", cfg.Matching.SimilarityThreshold).
		Int("max_similar", cfg.Matching.MaxSimilarProducts).
		Strs("sources", searchService.Info().Sources).
		Msg("search pipeline ready")

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Scraper.RequestTimeout*time.Duration(cfg.Scraper.MaxRetries) + 30*time.Second,
	}

	if err := serve(server, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// serve runs the server until it fails or SIGINT/SIGTERM arrives
func serve(server *http.Server, logger zerolog.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
