package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pricehunt/backend/internal/infrastructure/source"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Matching MatchingConfig `mapstructure:"matching"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// ScraperConfig holds the fetch policy for every price source
type ScraperConfig struct {
	RealScrapingEnabled  bool                 `mapstructure:"real_scraping_enabled"`
	RequestTimeout       time.Duration        `mapstructure:"request_timeout"`
	MaxRetries           int                  `mapstructure:"max_retries"`
	MaxProductsPerSource int                  `mapstructure:"max_products_per_source"`
	MaxConnections       int                  `mapstructure:"max_connections"`
	RequestsPerSecond    float64              `mapstructure:"requests_per_second"`
	UserAgent            string               `mapstructure:"user_agent"`
	DefaultDelay         source.DelayRange    `mapstructure:"default_delay"`
	DomainDelays         []source.DomainDelay `mapstructure:"domain_delays"`
	RetryBackoff         source.DelayRange    `mapstructure:"retry_backoff"`
	RateLimitBackoff     source.DelayRange    `mapstructure:"rate_limit_backoff"`
}

// MatchingConfig holds similarity and ranking configuration
type MatchingConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	MaxSimilarProducts  int     `mapstructure:"max_similar_products"`
	RelatedThreshold    float64 `mapstructure:"related_threshold"`
	BestDealsLimit      int     `mapstructure:"best_deals_limit"`
}

// DefaultDomainDelays are the politeness ranges for the built-in retailers.
// Kept as a list because viper splits map keys on dots.
func DefaultDomainDelays() []source.DomainDelay {
	return []source.DomainDelay{
		{Domain: "amazon.com", Min: 2 * time.Second, Max: 5 * time.Second},
		{Domain: "ebay.com", Min: 1 * time.Second, Max: 3 * time.Second},
		{Domain: "walmart.com", Min: 2 * time.Second, Max: 4 * time.Second},
	}
}

// Load loads configuration from .env, environment variables and config files
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
	v.AddConfigPath("/etc/pricehunt/")

	// Environment variable settings, e.g. PRICEHUNT_SCRAPER_MAX_RETRIES
	v.SetEnvPrefix("PRICEHUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if len(config.Scraper.DomainDelays) == 0 {
		config.Scraper.DomainDelays = DefaultDomainDelays()
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile reads .env from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Scraper defaults
	v.SetDefault("scraper.real_scraping_enabled", false)
	v.SetDefault("scraper.request_timeout", "30s")
	v.SetDefault("scraper.max_retries", 3)
	v.SetDefault("scraper.max_products_per_source", 10)
	v.SetDefault("scraper.max_connections", 10)
	v.SetDefault("scraper.requests_per_second", 1.0)
	v.SetDefault("scraper.user_agent", source.DefaultUserAgent)
	v.SetDefault("scraper.default_delay.min", "1s")
	v.SetDefault("scraper.default_delay.max", "3s")
	v.SetDefault("scraper.retry_backoff.min", "1s")
	v.SetDefault("scraper.retry_backoff.max", "3s")
	v.SetDefault("scraper.rate_limit_backoff.min", "5s")
	v.SetDefault("scraper.rate_limit_backoff.max", "10s")

	// Matching defaults
	v.SetDefault("matching.similarity_threshold", 0.7)
	v.SetDefault("matching.max_similar_products", 10)
	v.SetDefault("matching.related_threshold", 0.3)
	v.SetDefault("matching.best_deals_limit", 5)
}

// validate validates the configuration
func validate(config *Config) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(config.Log.Level)); err != nil {
		return fmt.Errorf("unknown log level: %s", config.Log.Level)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	s := config.Scraper
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got: %s", s.RequestTimeout)
	}
	if s.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got: %d", s.MaxRetries)
	}
	if s.MaxProductsPerSource < 1 {
		return fmt.Errorf("max products per source must be at least 1, got: %d", s.MaxProductsPerSource)
	}
	if s.MaxConnections < 0 {
		return fmt.Errorf("max connections must not be negative, got: %d", s.MaxConnections)
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got: %v", s.RequestsPerSecond)
	}

	ranges := map[string]source.DelayRange{
		"default delay":      s.DefaultDelay,
		"retry backoff":      s.RetryBackoff,
		"rate limit backoff": s.RateLimitBackoff,
	}
	for _, d := range s.DomainDelays {
		ranges["delay for "+d.Domain] = source.DelayRange{Min: d.Min, Max: d.Max}
	}
	for name, r := range ranges {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("%s must satisfy 0 <= min <= max, got: %s-%s", name, r.Min, r.Max)
		}
	}

	m := config.Matching
	if m.SimilarityThreshold <= 0 || m.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got: %v", m.SimilarityThreshold)
	}
	if m.RelatedThreshold < 0 || m.RelatedThreshold > 1 {
		return fmt.Errorf("related threshold must be in [0, 1], got: %v", m.RelatedThreshold)
	}
	if m.MaxSimilarProducts < 1 {
		return fmt.Errorf("max similar products must be at least 1, got: %d", m.MaxSimilarProducts)
	}
	if m.BestDealsLimit < 0 {
		return fmt.Errorf("best deals limit must not be negative, got: %d", m.BestDealsLimit)
	}

	return nil
}

// ClientConfig converts the scraper section into the source client policy
func (s ScraperConfig) ClientConfig() source.ClientConfig {
	return source.ClientConfig{
		Enabled:           s.RealScrapingEnabled,
		Timeout:           s.RequestTimeout,
		MaxRetries:        s.MaxRetries,
		MaxConnections:    s.MaxConnections,
		RequestsPerSecond: s.RequestsPerSecond,
		UserAgent:         s.UserAgent,
		DefaultDelay:      s.DefaultDelay,
		DomainDelays:      s.DomainDelays,
		RetryBackoff:      s.RetryBackoff,
		RateLimitBackoff:  s.RateLimitBackoff,
	}
}
