package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings are the process-wide switches consumed by the batch glue.
type Settings struct {
	// LoadSmallDataInMemory reads small query files in one go instead of streaming them.
	LoadSmallDataInMemory bool `mapstructure:"load_small_data_in_memory"`
	// UseMultithreading resolves batch queries concurrently.
	UseMultithreading bool `mapstructure:"use_multithreading"`
}

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName            string        `mapstructure:"app_name"`
	LogLevel           string        `mapstructure:"log_level"`
	BaseURL            string        `mapstructure:"base_url"`
	APIVersion         string        `mapstructure:"api_version"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	UserAgent          string        `mapstructure:"user_agent"`
	LogHTTP            bool          `mapstructure:"log_http"`
	MetricsEnabled     bool          `mapstructure:"metrics_enabled"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`
	SinksFile   string `mapstructure:"sinks_file"`

	BatchWorkers int      `mapstructure:"batch_workers"`
	Settings     Settings `mapstructure:",squash"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	v.SetEnvPrefix("amba")

	v.SetDefault("app_name", "amba")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "https://api.brain-map.org/api/v2/")
	v.SetDefault("api_version", "v1")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("user_agent", "amba-client/1.0")
	v.SetDefault("log_http", false)
	v.SetDefault("metrics_enabled", false)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/genes.db")
	v.SetDefault("sinks_file", "")
	v.SetDefault("batch_workers", 4)
	v.SetDefault("load_small_data_in_memory", true)
	v.SetDefault("use_multithreading", false)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return fmt.Errorf("invalid base_url (must not be empty)")
	}
	cfg.APIVersion = strings.ToLower(strings.TrimSpace(cfg.APIVersion))

	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.BatchWorkers <= 0 {
		return fmt.Errorf("invalid batch_workers (must be positive)")
	}

	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	cfg.SinksFile = strings.TrimSpace(cfg.SinksFile)
	return nil
}
