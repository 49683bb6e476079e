package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel        = "info"
	DefaultJSONLog         = false
	DefaultUserAgent       = "LinkcleanPreviewBot/1.0 (+https://github.com/law-makers/linkclean)"
	DefaultPreviewTimeout  = 8 * time.Second
	MaxPreviewTimeout      = 8 * time.Second
	DefaultMaxBodyBytes    = 2 * 1024 * 1024
	DefaultRateLimitRPS    = 2.0
	DefaultRateLimitBurst  = 4
	DefaultCacheTTL        = 10 * time.Minute
	DefaultCacheMaxEntries = 512
	DefaultConcurrency     = 0 // auto
	MaxConcurrency         = 32
	DefaultStoreBackend    = "auto"
)

// Environment variable names
const (
	EnvConfig       = "LINKCLEAN_CONFIG"
	EnvUserAgent    = "LINKCLEAN_USER_AGENT"
	EnvProxy        = "LINKCLEAN_PROXY"
	EnvTimeout      = "LINKCLEAN_TIMEOUT"
	EnvStoreBackend = "LINKCLEAN_STORE"
	EnvStoreDir     = "LINKCLEAN_STORE_DIR"
	EnvLogLevel     = "LINKCLEAN_LOG_LEVEL"
)
