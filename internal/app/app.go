// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/linkclean/internal/batch"
	"github.com/law-makers/linkclean/internal/cache"
	"github.com/law-makers/linkclean/internal/config"
	"github.com/law-makers/linkclean/internal/preview"
	"github.com/law-makers/linkclean/internal/ratelimit"
	"github.com/law-makers/linkclean/internal/session"
	"github.com/law-makers/linkclean/internal/store"
	"github.com/law-makers/linkclean/pkg/models"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Store       *store.BlockListStore
	Session     *session.Session
	HTTPClient  *http.Client
	Extractor   *preview.Extractor
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	startTime   time.Time
}

// Option customizes New, mostly for tests
type Option func(*options)

type options struct {
	kv store.KV
}

// WithKV replaces the configured block-list store backend
func WithKV(kv store.KV) Option {
	return func(o *options) { o.kv = kv }
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Opens the block-list store and loads the saved list
//   - Initializes the HTTP client (optionally through a proxy)
//   - Creates the preview extractor, cache and rate limiter
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := setupLogger(cfg, os.Stderr)

	kv := o.kv
	if kv == nil {
		var err error
		kv, err = store.Open(store.Options{Backend: cfg.StoreBackend, Dir: cfg.StoreDir})
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
	}
	blockStore := store.NewBlockListStore(kv)
	logger.Debug().Str("backend", fmt.Sprintf("%T", kv)).Msg("Block-list store opened")

	httpClient, err := newHTTPClient(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Dur("timeout", cfg.PreviewTimeout).
		Bool("proxy", cfg.Proxy != "").
		Msg("HTTP client initialized")

	extractor := preview.New(httpClient, preview.Options{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.PreviewTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	var limiter ratelimit.RateLimiter = ratelimit.Unlimited{}
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	a := &Application{
		Config:      cfg,
		Logger:      &logger,
		Store:       blockStore,
		Session:     session.New(blockStore, extractor),
		HTTPClient:  httpClient,
		Extractor:   extractor,
		Cache:       cache.NewMemoryCache(cfg.CacheMaxEntries),
		RateLimiter: limiter,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return a, nil
}

// setupLogger configures the global zerolog logger. "info" stays quiet unless -v is used.
func setupLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	var level zerolog.Level
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	default:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")
	return logger
}

func newHTTPClient(proxy string) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &http.Client{Transport: transport}, nil
}

// BatchRunner builds a batch runner over the current block list
func (a *Application) BatchRunner(withPreview bool, concurrency int, onItem func(models.BatchItem)) *batch.Runner {
	if concurrency <= 0 {
		concurrency = a.Config.Concurrency
	}
	return batch.New(a.Session.BlockList(), a.Extractor, a.Cache, a.RateLimiter, batch.Options{
		Concurrency: concurrency,
		Preview:     withPreview,
		CacheTTL:    a.Config.CacheTTL,
		OnItem:      onItem,
	})
}

// Close gracefully shuts down the application and all its resources.
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if mc, ok := a.Cache.(*cache.MemoryCache); ok {
		a.Logger.Debug().Fields(mc.Stats()).Msg("Preview cache stats")
	}
	if dl, ok := a.RateLimiter.(*ratelimit.DomainLimiter); ok {
		a.Logger.Debug().Int("domains", dl.Domains()).Msg("Rate limiter stats")
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
