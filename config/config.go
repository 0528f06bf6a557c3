package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/embedgate/embedgate/telemetry"
)

// Config holds the complete gateway configuration.
type Config struct {
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Capacity is the maximum number of cached entries.
	Capacity int `mapstructure:"capacity"`

	// DefaultTTL applies when a store request carries no TTL.
	DefaultTTL time.Duration `mapstructure:"default_ttl"`

	// MaxTTL caps any requested TTL.
	MaxTTL time.Duration `mapstructure:"max_ttl"`

	// CleanupInterval is how often the background reaper sweeps expired
	// entries. Zero disables the reaper; lazy expiry still applies.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig configures the per-identity fixed window limiter.
type RateLimitConfig struct {
	// Limit is the number of requests admitted per window.
	Limit int `mapstructure:"limit"`

	// Window is the fixed window duration.
	Window time.Duration `mapstructure:"window"`

	// MaxIdentities bounds the limiter's identity table.
	MaxIdentities int `mapstructure:"max_identities"`
}

// UpstreamConfig configures upstream providers.
type UpstreamConfig struct {
	// Timeout is the per-call deadline applied to upstream requests.
	Timeout time.Duration `mapstructure:"timeout"`

	// EmbedBaseURL is the embedding provider endpoint.
	EmbedBaseURL string `mapstructure:"embed_base_url"`

	// EmbedAPIKey is the embedding provider credential.
	// Supports ${ENV_VAR} references resolved at client construction.
	EmbedAPIKey string `mapstructure:"embed_api_key"`

	// EmbedModel is the embedding model identifier.
	EmbedModel string `mapstructure:"embed_model"`

	// VectorBaseURL is the vector store endpoint.
	VectorBaseURL string `mapstructure:"vector_base_url"`

	// VectorAPIKey is the vector store credential.
	// Supports ${ENV_VAR} references resolved at client construction.
	VectorAPIKey string `mapstructure:"vector_api_key"`

	// VectorCollection is the vector store collection name.
	VectorCollection string `mapstructure:"vector_collection"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	ServiceName     string  `mapstructure:"service_name"`
	Version         string  `mapstructure:"version"`
	TracingEnabled  bool    `mapstructure:"tracing_enabled"`
	TracingExporter string  `mapstructure:"tracing_exporter"`
	SamplePct       float64 `mapstructure:"sample_pct"`
	MetricsEnabled  bool    `mapstructure:"metrics_enabled"`
	MetricsExporter string  `mapstructure:"metrics_exporter"`
	LoggingEnabled  bool    `mapstructure:"logging_enabled"`
	LogLevel        string  `mapstructure:"log_level"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Capacity:        10000,
			DefaultTTL:      5 * time.Minute,
			MaxTTL:          1 * time.Hour,
			CleanupInterval: 1 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Limit:         100,
			Window:        1 * time.Minute,
			MaxIdentities: 10000,
		},
		Upstream: UpstreamConfig{
			Timeout: 5 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "embedgate",
			LoggingEnabled: true,
			LogLevel:       "info",
		},
	}
}

// Validate checks all configuration values.
func (c *Config) Validate() error {
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCacheCapacity, c.Cache.Capacity)
	}
	if c.Cache.DefaultTTL < 0 || c.Cache.MaxTTL < 0 {
		return fmt.Errorf("%w: ttl must not be negative", ErrInvalidTTL)
	}
	if c.Cache.MaxTTL > 0 && c.Cache.DefaultTTL > c.Cache.MaxTTL {
		return fmt.Errorf("%w: default ttl %v exceeds max ttl %v", ErrInvalidTTL, c.Cache.DefaultTTL, c.Cache.MaxTTL)
	}
	if c.Cache.CleanupInterval < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidCleanupInterval, c.Cache.CleanupInterval)
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRateLimit, c.RateLimit.Limit)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRateWindow, c.RateLimit.Window)
	}
	if c.RateLimit.MaxIdentities <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxIdentities, c.RateLimit.MaxIdentities)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidUpstreamTimeout, c.Upstream.Timeout)
	}
	tc := c.TelemetryConfig()
	return tc.Validate()
}

// TelemetryConfig converts the telemetry section into the telemetry
// package's configuration type.
func (c *Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{
		ServiceName: c.Telemetry.ServiceName,
		Version:     c.Telemetry.Version,
		Tracing: telemetry.TracingConfig{
			Enabled:   c.Telemetry.TracingEnabled,
			Exporter:  c.Telemetry.TracingExporter,
			SamplePct: c.Telemetry.SamplePct,
		},
		Metrics: telemetry.MetricsConfig{
			Enabled:  c.Telemetry.MetricsEnabled,
			Exporter: c.Telemetry.MetricsExporter,
		},
		Logging: telemetry.LoggingConfig{
			Enabled: c.Telemetry.LoggingEnabled,
			Level:   c.Telemetry.LogLevel,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file, and
// EMBEDGATE_-prefixed environment variables, in ascending precedence.
// Pass an empty path to skip the file layer.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EMBEDGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := Default()
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every configuration key. Unmarshal only visits
// registered keys, so a key must appear here, zero-valued or not, for
// its environment variable to bind.
func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("cache.capacity", def.Cache.Capacity)
	v.SetDefault("cache.default_ttl", def.Cache.DefaultTTL.String())
	v.SetDefault("cache.max_ttl", def.Cache.MaxTTL.String())
	v.SetDefault("cache.cleanup_interval", def.Cache.CleanupInterval.String())

	v.SetDefault("ratelimit.limit", def.RateLimit.Limit)
	v.SetDefault("ratelimit.window", def.RateLimit.Window.String())
	v.SetDefault("ratelimit.max_identities", def.RateLimit.MaxIdentities)

	v.SetDefault("upstream.timeout", def.Upstream.Timeout.String())
	v.SetDefault("upstream.embed_base_url", def.Upstream.EmbedBaseURL)
	v.SetDefault("upstream.embed_api_key", def.Upstream.EmbedAPIKey)
	v.SetDefault("upstream.embed_model", def.Upstream.EmbedModel)
	v.SetDefault("upstream.vector_base_url", def.Upstream.VectorBaseURL)
	v.SetDefault("upstream.vector_api_key", def.Upstream.VectorAPIKey)
	v.SetDefault("upstream.vector_collection", def.Upstream.VectorCollection)

	v.SetDefault("telemetry.service_name", def.Telemetry.ServiceName)
	v.SetDefault("telemetry.version", def.Telemetry.Version)
	v.SetDefault("telemetry.tracing_enabled", def.Telemetry.TracingEnabled)
	v.SetDefault("telemetry.tracing_exporter", def.Telemetry.TracingExporter)
	v.SetDefault("telemetry.sample_pct", def.Telemetry.SamplePct)
	v.SetDefault("telemetry.metrics_enabled", def.Telemetry.MetricsEnabled)
	v.SetDefault("telemetry.metrics_exporter", def.Telemetry.MetricsExporter)
	v.SetDefault("telemetry.logging_enabled", def.Telemetry.LoggingEnabled)
	v.SetDefault("telemetry.log_level", def.Telemetry.LogLevel)
}
