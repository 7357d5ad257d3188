package config

import (
	"time"

	"hypotest/internal/errors"

	"github.com/caarlos0/env/v11"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Results   ResultsConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
	Log       LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	GinMode        string   `env:"GIN_MODE" envDefault:"debug"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://127.0.0.1:5500,http://localhost:5500"`
	MaxUploadBytes int64    `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`
	// Per-client token bucket for upload endpoints.
	UploadRatePerSecond float64 `env:"UPLOAD_RATE_PER_SECOND" envDefault:"5"`
	UploadBurst         int     `env:"UPLOAD_BURST" envDefault:"10"`
}

// ResultsConfig holds the on-disk result cache settings
type ResultsConfig struct {
	Dir             string        `env:"RESULT_DIR" envDefault:"results"`
	TTL             time.Duration `env:"RESULT_TTL" envDefault:"10m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10s"`
	OriginalNameMax int           `env:"ORIGINAL_NAME_MAX" envDefault:"30"`
}

// DatabaseConfig selects where result metadata lives. An empty driver keeps
// metadata in .meta files next to the result workbooks.
type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER"`
	URL    string `env:"DATABASE_URL"`
}

// ProfilingConfig holds the admin listener settings. Health and metrics are
// always served there; Enabled toggles /debug/pprof.
type ProfilingConfig struct {
	Port    string `env:"PPROF_PORT" envDefault:"6060"`
	Enabled bool   `env:"PPROF_ENABLED" envDefault:"true"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Supported DATABASE_DRIVER values
const (
	DriverFile     = ""
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to parse environment")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Server.UploadRatePerSecond <= 0 || config.Server.UploadBurst <= 0 {
		return errors.ConfigInvalid("upload rate and burst must be positive")
	}
	if config.Results.Dir == "" {
		return errors.ConfigInvalid("RESULT_DIR is required")
	}
	if config.Results.TTL <= 0 {
		return errors.ConfigInvalid("RESULT_TTL must be positive")
	}
	if config.Results.CleanupInterval <= 0 {
		return errors.ConfigInvalid("CLEANUP_INTERVAL must be positive")
	}
	if config.Results.OriginalNameMax <= 0 {
		return errors.ConfigInvalid("ORIGINAL_NAME_MAX must be positive")
	}

	switch config.Database.Driver {
	case DriverFile:
	case DriverSQLite, DriverPostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when DATABASE_DRIVER is set")
		}
	default:
		return errors.ConfigInvalid("unsupported DATABASE_DRIVER: " + config.Database.Driver)
	}
	return nil
}
