package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIURL is the REST API base used when nothing else is configured.
const DefaultAPIURL = "http://localhost:5000/api"

// ErrInvalidConfig is returned when the configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all application configuration
type Config struct {
	App       AppConfig
	API       APIConfig
	Storage   StorageConfig
	Log       LogConfig
	UI        UIConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig holds settings for the remote marketplace API
type APIConfig struct {
	URL        string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables
	RateBurst  int
	MaxRetries int // retries for idempotent requests, 0 disables
	UserAgent  string
}

// StorageConfig selects where tokens, the cached user and the cart are kept
type StorageConfig struct {
	Driver    string // file, sqlite, redis, memory
	Path      string // file or sqlite path
	KeyPrefix string // redis key prefix
	Redis     RedisConfig
	// FallbackToMemory uses an in-memory store when the configured backend is unreachable
	FallbackToMemory bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging overrides. Empty fields take the logger profile
// default for the environment.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// UIConfig holds user-facing presentation settings
type UIConfig struct {
	Locale string // BCP 47 tag for notifications, e.g. "es" or "en"
}

// TelemetryConfig holds OpenTelemetry and metrics configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsFile       string // prometheus textfile written on exit, empty disables
}

// Load loads configuration from the default locations.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from TOML and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_API_URL)
// 2. The given file, or storefront.toml in the working directory or ~/.config/storefront
// 3. Built-in defaults
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "storefront"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// NEXT_PUBLIC_API_URL is the variable the web storefront reads.
	if err := v.BindEnv("api.url", "STOREFRONT_API_URL", "NEXT_PUBLIC_API_URL"); err != nil {
		return nil, fmt.Errorf("binding api url env: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			URL:        v.GetString("api.url"),
			Timeout:    v.GetDuration("api.timeout"),
			RateLimit:  v.GetFloat64("api.rate_limit"),
			RateBurst:  v.GetInt("api.rate_burst"),
			MaxRetries: v.GetInt("api.max_retries"),
			UserAgent:  v.GetString("api.user_agent"),
		},
		Storage: StorageConfig{
			Driver:    v.GetString("storage.driver"),
			Path:      v.GetString("storage.path"),
			KeyPrefix: v.GetString("storage.key_prefix"),
			Redis: RedisConfig{
				Host:     v.GetString("storage.redis.host"),
				Port:     v.GetInt("storage.redis.port"),
				Password: v.GetString("storage.redis.password"),
				DB:       v.GetInt("storage.redis.db"),
			},
			FallbackToMemory: v.GetBool("storage.fallback_to_memory"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		UI: UIConfig{
			Locale: v.GetString("ui.locale"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsFile:       v.GetString("telemetry.metrics_file"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.API.URL == "" {
		cfg.API.URL = DefaultAPIURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.RateLimit > 0 && cfg.API.RateBurst == 0 {
		cfg.API.RateBurst = 1
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "storefront-cli/1.0"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath(cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "storefront:"
	}
	if cfg.Storage.Redis.Host == "" {
		cfg.Storage.Redis.Host = "localhost"
	}
	if cfg.Storage.Redis.Port == 0 {
		cfg.Storage.Redis.Port = 6379
	}
	if cfg.UI.Locale == "" {
		cfg.UI.Locale = "es"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "storefront-cli"
	}
}

// defaultStoragePath returns the per-user location of the local store
func defaultStoragePath(driver string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	name := "storage.json"
	if driver == "sqlite" {
		name = "storage.db"
	}
	return filepath.Join(dir, "storefront", name)
}

// validate checks that the configuration is usable
func (c *Config) validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("%w: api.url: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: api.url must use http or https, got %q", ErrInvalidConfig, c.API.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: api.url has no host", ErrInvalidConfig)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout must not be negative", ErrInvalidConfig)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("%w: api.max_retries must not be negative", ErrInvalidConfig)
	}
	switch c.Storage.Driver {
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("%w: telemetry.sampling_ratio must be between 0 and 1", ErrInvalidConfig)
	}
	if c.Telemetry.Enabled && c.Telemetry.CollectorEndpoint == "" {
		return fmt.Errorf("%w: telemetry.collector_endpoint is required when telemetry is enabled", ErrInvalidConfig)
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
