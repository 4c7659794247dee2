package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Session   SessionConfig   `mapstructure:"session"`
	Cache     CacheConfig     `mapstructure:"cache"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SessionConfig configures map sessions.
type SessionConfig struct {
	Zoom                int  `mapstructure:"zoom"`
	DebounceMS          int  `mapstructure:"debounce_ms"`
	RemoveStaleMarkers  bool `mapstructure:"remove_stale_markers"`
	DiscardStaleResults bool `mapstructure:"discard_stale_results"`
}

// DebounceWindow returns the debounce window as a duration.
func (s SessionConfig) DebounceWindow() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "http://api.openweathermap.org")
	v.SetDefault("weather.timeout_seconds", 10)
	v.SetDefault("session.zoom", 10)
	v.SetDefault("session.debounce_ms", 1000)
	v.SetDefault("session.remove_stale_markers", true)
	v.SetDefault("session.discard_stale_results", true)
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: WEATHERMAP_WEATHER_API_KEY → weather.api_key
	v.SetEnvPrefix("WEATHERMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Weather.APIKey == "" {
		errs = append(errs, "weather.api_key is required")
	}
	if c.Weather.BaseURL == "" {
		errs = append(errs, "weather.base_url is required")
	}
	if c.Weather.TimeoutSeconds <= 0 {
		errs = append(errs, "weather.timeout_seconds must be positive")
	}
	if c.Session.Zoom < 0 || c.Session.Zoom > 22 {
		errs = append(errs, fmt.Sprintf("session.zoom must be 0-22, got %d", c.Session.Zoom))
	}
	if c.Session.DebounceMS < 0 {
		errs = append(errs, "session.debounce_ms must not be negative")
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, "cache.ttl_seconds must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
