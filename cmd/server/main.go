package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/nutriscan/backend/config"
	httpDelivery "github.com/nutriscan/backend/internal/delivery/http"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/nutriscan/backend/internal/infrastructure/cache"
	"github.com/nutriscan/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutriscan/backend/internal/usecase"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "nutriscan",
		Short:        "Barcode nutrition checker backed by Open Food Facts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "check <barcode>",
		Short: "Check a single barcode and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args[0])
		},
	})

	return root
}

// buildCheckService wires the Open Food Facts client, optional cache and check service
func buildCheckService(cfg *config.Config) *usecase.CheckService {
	client := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:              cfg.FoodFacts.BaseURL,
		UserAgent:            cfg.FoodFacts.UserAgent,
		Timeout:              cfg.FoodFacts.Timeout,
		ProductRatePerMinute: cfg.FoodFacts.ProductRatePerMinute,
		SearchRatePerMinute:  cfg.FoodFacts.SearchRatePerMinute,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
		log.Printf("Open Food Facts client debug mode enabled")
	}

	var productCache domain.CacheRepository
	if cfg.Cache.Type == "memory" {
		productCache = cache.NewMemoryCache(cache.DefaultCleanupInterval)
		log.Printf("Product cache enabled (TTL: %s)", cfg.Cache.TTL)
	}

	return usecase.NewCheckService(client, productCache, usecase.CheckServiceConfig{
		SearchPageSize:           cfg.FoodFacts.SearchPageSize,
		IsolateAlternativeErrors: cfg.Analysis.IsolateAlternativeErrors,
		CacheTTL:                 cfg.Cache.TTL,
	})
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting NutriScan Backend v%s", httpDelivery.Version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Open Food Facts: %s (search page size %d)", cfg.FoodFacts.BaseURL, cfg.FoodFacts.SearchPageSize)

	handler := httpDelivery.NewHandler(buildCheckService(cfg))
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Backend running at http://localhost%s", addr)

	if err := router.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func runCheck(ctx context.Context, barcode string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// stdout carries the report
	log.SetOutput(os.Stderr)

	report, err := buildCheckService(cfg).Check(ctx, barcode)
	if errors.Is(err, domain.ErrProductNotFound) {
		return printJSON(map[string]string{"error": "Product not found"})
	}
	if err != nil {
		return fmt.Errorf("check %s: %w", barcode, err)
	}

	return printJSON(report)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
