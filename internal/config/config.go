// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration values for the trip planner client.
// Values are populated by Load from environment variables.
type Config struct {
	// APIBaseURL is the base URL of the remote trip API.
	APIBaseURL string `env:"API_BASE_URL" env-default:"http://localhost:5000"`

	// DataDir is the directory holding the local settings database
	// (credential, theme preference). Defaults to ~/.tripplanner.
	DataDir string `env:"DATA_DIR"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// HTTPTimeout is the per-request timeout for all API calls.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" env-default:"15s"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error if APIBaseURL does not parse as an absolute URL or the
// default data directory cannot be resolved.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("config.Load: API_BASE_URL %q is not an absolute URL", cfg.APIBaseURL)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config.Load: resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".tripplanner")
	}

	return cfg, nil
}
