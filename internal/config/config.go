// Package config loads runtime configuration from the environment.
//
// Values are read with the STAFFD_ prefix into nested structs via koanf
// (STAFFD_SERVER.PORT -> server.port). A .env file is picked up
// automatically when present. Every knob has a default except the
// database URL, which also falls back to the conventional DATABASE_URL
// variable and is required: without it startup must abort.
package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "STAFFD_"

// Config is the root configuration object.
//
// Observability is a pointer because the whole block is optional; when
// absent, defaults are injected.
type Config struct {
	Primary       Primary              `koanf:"primary"`
	Server        ServerConfig         `koanf:"server"`
	Database      DatabaseConfig       `koanf:"database"`
	Redis         RedisConfig          `koanf:"redis"`
	Offload       OffloadConfig        `koanf:"offload"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env"`
}

// ServerConfig groups settings for the HTTP server runtime. Timeouts are
// seconds.
type ServerConfig struct {
	Host               string   `koanf:"host"`
	Port               string   `koanf:"port"`
	ReadTimeout        int      `koanf:"read_timeout"`
	WriteTimeout       int      `koanf:"write_timeout"`
	IdleTimeout        int      `koanf:"idle_timeout"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// BodyLimit caps request bodies read by the bounded accumulator, in
	// bytes.
	BodyLimit int64 `koanf:"body_limit"`
}

// DatabaseConfig contains the Postgres connection string and pool
// tuning. Durations are seconds.
type DatabaseConfig struct {
	URL               string `koanf:"url" validate:"required"`
	MaxConns          int32  `koanf:"max_conns"`
	MinConns          int32  `koanf:"min_conns"`
	MaxConnLifetime   int    `koanf:"max_conn_lifetime"`
	MaxConnIdleTime   int    `koanf:"max_conn_idle_time"`
	HealthCheckPeriod int    `koanf:"health_check_period"`

	// AcquireTimeout bounds how long an offloaded task waits for a
	// pooled connection before failing.
	AcquireTimeout int `koanf:"acquire_timeout"`
}

// RedisConfig contains Redis connection details. An empty address
// disables the employee read cache.
type RedisConfig struct {
	Address  string `koanf:"address"`
	CacheTTL int    `koanf:"cache_ttl"`
}

// OffloadConfig tunes the blocking-call executor. SubmitWait is seconds.
type OffloadConfig struct {
	Workers    int `koanf:"workers"`
	QueueDepth int `koanf:"queue_depth"`
	SubmitWait int `koanf:"submit_wait"`
}

func defaultConfig() *Config {
	return &Config{
		Primary: Primary{
			Env: "development",
		},
		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			BodyLimit:          262144,
		},
		Database: DatabaseConfig{
			MaxConns:          10,
			MinConns:          2,
			MaxConnLifetime:   1800,
			MaxConnIdleTime:   300,
			HealthCheckPeriod: 60,
			AcquireTimeout:    5,
		},
		Redis: RedisConfig{
			CacheTTL: 300,
		},
		Offload: OffloadConfig{
			Workers:    10,
			QueueDepth: 64,
			SubmitWait: 5,
		},
	}
}

// Load reads the environment into a Config, applies defaults, and
// validates the result. A missing database URL is an error; the caller
// is expected to treat any error as fatal before serving traffic.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	mainConfig := defaultConfig()

	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	// Conventional fallback used by most deployments.
	if mainConfig.Database.URL == "" {
		mainConfig.Database.URL = os.Getenv("DATABASE_URL")
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service naming stays consistent across logs and traces no matter
	// what the environment supplies.
	mainConfig.Observability.ServiceName = "staffd"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate observability config")
	}

	return mainConfig, nil
}
