// Package config loads application configuration from environment variables.
// All variables use the LAB_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Event sinks.
const (
	SinkNone     = "none"
	SinkMemory   = "memory"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Events   EventsConfig
	Lab      LabConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings.
type CacheConfig struct {
	URL string
}

// EventsConfig selects where analytics events go.
type EventsConfig struct {
	Sink      string // "none", "memory", "postgres", or "redis"
	Stream    string // redis stream name
	StreamMax int64  // approximate stream length cap, 0 = unbounded
}

// LabConfig holds lab session settings.
type LabConfig struct {
	CatalogPath  string        // empty uses the embedded catalog
	AdvanceDelay time.Duration // 0 leaves advancing to the client
	MaxBenches   int           // 0 = unlimited
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LAB_ prefix.
func Load() (*Config, error) {
	advanceDelay, err := envDuration("LAB_ADVANCE_DELAY", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("LAB_SERVER_PORT", 8080),
			Host: envStr("LAB_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("LAB_DATABASE_URL", ""),
			MaxConns: envInt("LAB_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("LAB_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("LAB_CACHE_URL", ""),
		},
		Events: EventsConfig{
			Sink:      strings.ToLower(envStr("LAB_EVENTS_SINK", SinkNone)),
			Stream:    envStr("LAB_EVENTS_STREAM", "lab:events"),
			StreamMax: int64(envInt("LAB_EVENTS_STREAM_MAX", 100000)),
		},
		Lab: LabConfig{
			CatalogPath:  envStr("LAB_CATALOG_PATH", ""),
			AdvanceDelay: advanceDelay,
			MaxBenches:   envInt("LAB_MAX_BENCHES", 1000),
		},
		Log: LogConfig{
			Level:  envStr("LAB_LOG_LEVEL", "info"),
			Format: envStr("LAB_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("LAB_SERVER_PORT must be 1-65535, got %d", c.Server.Port)
	}

	switch c.Events.Sink {
	case SinkNone, SinkMemory:
	case SinkPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("LAB_DATABASE_URL is required when LAB_EVENTS_SINK=postgres")
		}
	case SinkRedis:
		if c.Cache.URL == "" {
			return fmt.Errorf("LAB_CACHE_URL is required when LAB_EVENTS_SINK=redis")
		}
	default:
		return fmt.Errorf("LAB_EVENTS_SINK must be one of none, memory, postgres, redis; got %q", c.Events.Sink)
	}

	if c.Lab.AdvanceDelay < 0 {
		return fmt.Errorf("LAB_ADVANCE_DELAY must not be negative, got %s", c.Lab.AdvanceDelay)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LAB_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
