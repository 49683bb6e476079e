package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with optional fields so an absent key keeps the
// lower-precedence value
type fileConfig struct {
	LogLevel        *string  `yaml:"log_level"`
	JSONLog         *bool    `yaml:"json_log"`
	Timeout         *string  `yaml:"timeout"`
	UserAgent       *string  `yaml:"user_agent"`
	Proxy           *string  `yaml:"proxy"`
	MaxBodyBytes    *int64   `yaml:"max_body_bytes"`
	RateLimitRPS    *float64 `yaml:"rate_limit_rps"`
	RateLimitBurst  *int     `yaml:"rate_limit_burst"`
	CacheTTL        *string  `yaml:"cache_ttl"`
	CacheMaxEntries *int     `yaml:"cache_max_entries"`
	Concurrency     *int     `yaml:"concurrency"`
	Store           *string  `yaml:"store"`
	StoreDir        *string  `yaml:"store_dir"`
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := decodeYAML(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.JSONLog != nil {
		cfg.JSONLog = *fc.JSONLog
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.PreviewTimeout = d
	}
	if fc.UserAgent != nil {
		cfg.UserAgent = *fc.UserAgent
	}
	if fc.Proxy != nil {
		cfg.Proxy = *fc.Proxy
	}
	if fc.MaxBodyBytes != nil {
		cfg.MaxBodyBytes = *fc.MaxBodyBytes
	}
	if fc.RateLimitRPS != nil {
		cfg.RateLimitRPS = *fc.RateLimitRPS
	}
	if fc.RateLimitBurst != nil {
		cfg.RateLimitBurst = *fc.RateLimitBurst
	}
	if fc.CacheTTL != nil {
		d, err := time.ParseDuration(*fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("cache_ttl: %w", err)
		}
		cfg.CacheTTL = d
	}
	if fc.CacheMaxEntries != nil {
		cfg.CacheMaxEntries = *fc.CacheMaxEntries
	}
	if fc.Concurrency != nil {
		cfg.Concurrency = *fc.Concurrency
	}
	if fc.Store != nil {
		cfg.StoreBackend = *fc.Store
	}
	if fc.StoreDir != nil {
		cfg.StoreDir = *fc.StoreDir
	}
	return nil
}
