package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	FoodFacts FoodFactsConfig `mapstructure:"foodfacts"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	StaticDir      string   `mapstructure:"static_dir"` // empty disables the front-end
}

// FoodFactsConfig holds Open Food Facts API configuration
type FoodFactsConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	UserAgent            string        `mapstructure:"user_agent"`
	Timeout              time.Duration `mapstructure:"timeout"`
	SearchPageSize       int           `mapstructure:"search_page_size"`
	ProductRatePerMinute int           `mapstructure:"product_rate_per_minute"`
	SearchRatePerMinute  int           `mapstructure:"search_rate_per_minute"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "none" or "memory"
	TTL  time.Duration `mapstructure:"ttl"`
}

// AnalysisConfig holds options for the nutrition check
type AnalysisConfig struct {
	IsolateAlternativeErrors bool `mapstructure:"isolate_alternative_errors"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutriscan/")

	// NUTRISCAN_FOODFACTS_BASE_URL -> foodfacts.base_url
	v.SetEnvPrefix("NUTRISCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env if present. Variables already set in the
// environment are left untouched.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.static_dir", "public")

	// Open Food Facts defaults. Rate limits are opt-in; 0 means unlimited.
	v.SetDefault("foodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("foodfacts.user_agent", "NutriScan/1.0")
	v.SetDefault("foodfacts.timeout", "30s")
	v.SetDefault("foodfacts.search_page_size", 20)
	v.SetDefault("foodfacts.product_rate_per_minute", 0)
	v.SetDefault("foodfacts.search_rate_per_minute", 0)

	// Cache defaults
	v.SetDefault("cache.type", "none")
	v.SetDefault("cache.ttl", "1h")

	// Analysis defaults
	v.SetDefault("analysis.isolate_alternative_errors", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set NUTRISCAN_SERVER_PORT)")
	}

	if config.FoodFacts.BaseURL == "" {
		return fmt.Errorf("Open Food Facts base URL is required (set NUTRISCAN_FOODFACTS_BASE_URL)")
	}

	if config.FoodFacts.SearchPageSize < 1 || config.FoodFacts.SearchPageSize > 100 {
		return fmt.Errorf("search page size must be between 1 and 100, got: %d", config.FoodFacts.SearchPageSize)
	}

	if config.FoodFacts.ProductRatePerMinute < 0 || config.FoodFacts.SearchRatePerMinute < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	if config.Cache.Type != "none" && config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'none' or 'memory', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "memory" && config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when cache type is 'memory'")
	}

	return nil
}
