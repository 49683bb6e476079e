package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	JSONLog  bool   `yaml:"json_log"`

	// Preview fetching
	PreviewTimeout time.Duration `yaml:"timeout" validate:"gt=0"`
	UserAgent      string        `yaml:"user_agent" validate:"required"`
	Proxy          string        `yaml:"proxy" validate:"omitempty,url"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" validate:"gt=0"`

	// Rate limiting; RPS 0 disables throttling
	RateLimitRPS   float64 `yaml:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" validate:"gte=1"`

	// Preview cache
	CacheTTL        time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	CacheMaxEntries int           `yaml:"cache_max_entries" validate:"gte=1"`

	// Batch
	Concurrency int `yaml:"concurrency" validate:"gte=0"`

	// Block-list storage
	StoreBackend string `yaml:"store" validate:"oneof=auto keyring file"`
	StoreDir     string `yaml:"store_dir"`
}

// Default returns a Config populated with defaults only
func Default() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		PreviewTimeout:  DefaultPreviewTimeout,
		UserAgent:       DefaultUserAgent,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		CacheTTL:        DefaultCacheTTL,
		CacheMaxEntries: DefaultCacheMaxEntries,
		Concurrency:     DefaultConcurrency,
		StoreBackend:    DefaultStoreBackend,
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	path := os.Getenv(EnvConfig)
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := applyFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv(EnvStoreBackend); v != "" {
		cfg.StoreBackend = v
	}
	if v := os.Getenv(EnvStoreDir); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.PreviewTimeout = d
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()

	if f := flags.Lookup("user-agent"); f != nil && f.Changed {
		cfg.UserAgent = f.Value.String()
	}
	if f := flags.Lookup("proxy"); f != nil && f.Changed {
		cfg.Proxy = f.Value.String()
	}
	if f := flags.Lookup("store"); f != nil && f.Changed {
		cfg.StoreBackend = f.Value.String()
	}
	if f := flags.Lookup("store-dir"); f != nil && f.Changed {
		cfg.StoreDir = f.Value.String()
	}
	if f := flags.Lookup("timeout"); f != nil && f.Changed {
		d, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.PreviewTimeout = d
	}
	if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
		cfg.JSONLog = true
	}
	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "error"
	}
	return nil
}
