// Package config provides configuration management for the event importer.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dertown/eventscrape/internal/database"
	"github.com/dertown/eventscrape/internal/logger"
)

// Importer defaults.
const (
	defaultFuzzyThreshold = 85
	defaultMonthsAhead    = 3
	defaultWorkers        = 1
	defaultSourceTimeout  = 2 * time.Minute
	defaultFetchTimeout   = 15 * time.Second
)

// Config is the resolved application configuration.
type Config struct {
	App      AppConfig
	Database database.Config
	Logging  logger.Config
	Importer ImporterConfig
	Metrics  MetricsConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Environment string
	Debug       bool
}

// ImporterConfig holds the import pipeline settings.
type ImporterConfig struct {
	// FuzzyThreshold is the minimum similarity score (0-100) for both
	// entity resolution and event title matching.
	FuzzyThreshold int
	// MonthsAhead is how many extra monthly calendar pages grid-style
	// extractors request.
	MonthsAhead int
	// Workers is the number of sources processed concurrently.
	Workers int
	// SourceTimeout bounds the processing of a single source.
	SourceTimeout time.Duration
	// FetchTimeout bounds a single HTTP request.
	FetchTimeout time.Duration
	// Schedule is a cron expression for scheduled import mode.
	Schedule string
}

// MetricsConfig holds the Prometheus listener settings.
type MetricsConfig struct {
	Enabled bool
	Address string
}

// InitializeViper configures Viper from the environment and an optional
// config.yaml. It must be called before Load.
func InitializeViper() error {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	_ = viper.ReadInConfig()

	if err := bindEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}

	if viper.GetBool("app.debug") {
		viper.Set("logging.level", "debug")
	}
	if viper.GetString("app.environment") == "development" {
		viper.Set("logging.development", true)
		viper.Set("logging.encoding", "console")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logging", map[string]any{
		"level":       "info",
		"encoding":    "json",
		"development": false,
	})

	viper.SetDefault("database", map[string]any{
		"host":              "localhost",
		"port":              5432,
		"user":              "postgres",
		"name":              "dertown",
		"sslmode":           "disable",
		"max_connections":   10,
		"max_idle":          5,
		"conn_max_lifetime": "5m",
	})

	viper.SetDefault("importer", map[string]any{
		"fuzzy_threshold": defaultFuzzyThreshold,
		"months_ahead":    defaultMonthsAhead,
		"workers":         defaultWorkers,
		"source_timeout":  defaultSourceTimeout.String(),
		"fetch_timeout":   defaultFetchTimeout.String(),
		"schedule":        "",
	})

	viper.SetDefault("metrics", map[string]any{
		"enabled": false,
		"address": ":9090",
	})
}

func bindEnvironmentVariables() error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"app.debug":         {"APP_DEBUG"},
		"logging.level":     {"LOG_LEVEL"},
		"logging.encoding":  {"LOG_FORMAT"},
		"database.host":     {"POSTGRES_HOST"},
		"database.port":     {"POSTGRES_PORT"},
		"database.user":     {"POSTGRES_USER"},
		"database.password": {"POSTGRES_PASSWORD"},
		"database.name":     {"POSTGRES_DB"},
		"database.sslmode":  {"POSTGRES_SSLMODE"},
		"importer.workers":  {"IMPORTER_WORKERS"},
		"importer.schedule": {"IMPORTER_SCHEDULE"},
		"metrics.enabled":   {"METRICS_ENABLED"},
		"metrics.address":   {"METRICS_ADDRESS"},
	}
	for key, envVars := range bindings {
		if err := viper.BindEnv(append([]string{key}, envVars...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the resolved configuration out of Viper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Environment: viper.GetString("app.environment"),
			Debug:       viper.GetBool("app.debug"),
		},
		Database: database.Config{
			Host:            viper.GetString("database.host"),
			Port:            viper.GetInt("database.port"),
			User:            viper.GetString("database.user"),
			Password:        viper.GetString("database.password"),
			Name:            viper.GetString("database.name"),
			SSLMode:         viper.GetString("database.sslmode"),
			MaxConnections:  viper.GetInt("database.max_connections"),
			MaxIdleConns:    viper.GetInt("database.max_idle"),
			ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
		},
		Logging: logger.Config{
			Level:       viper.GetString("logging.level"),
			Encoding:    viper.GetString("logging.encoding"),
			Development: viper.GetBool("logging.development"),
		},
		Importer: ImporterConfig{
			FuzzyThreshold: viper.GetInt("importer.fuzzy_threshold"),
			MonthsAhead:    viper.GetInt("importer.months_ahead"),
			Workers:        viper.GetInt("importer.workers"),
			SourceTimeout:  viper.GetDuration("importer.source_timeout"),
			FetchTimeout:   viper.GetDuration("importer.fetch_timeout"),
			Schedule:       viper.GetString("importer.schedule"),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("metrics.enabled"),
			Address: viper.GetString("metrics.address"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that would break a run.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Name == "" {
		return errors.New("database.name is required")
	}
	if c.Importer.FuzzyThreshold < 0 || c.Importer.FuzzyThreshold > 100 {
		return fmt.Errorf("importer.fuzzy_threshold must be 0-100, got %d", c.Importer.FuzzyThreshold)
	}
	if c.Importer.MonthsAhead < 1 {
		return fmt.Errorf("importer.months_ahead must be at least 1, got %d", c.Importer.MonthsAhead)
	}
	if c.Importer.Workers < 1 {
		return fmt.Errorf("importer.workers must be at least 1, got %d", c.Importer.Workers)
	}
	return nil
}
