// Package config loads launchmgr settings from defaults, an optional YAML
// file and LAUNCHMGR_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "LAUNCHMGR_"

// Config is the full application configuration.
type Config struct {
	// SteamDir overrides Steam install discovery when set.
	SteamDir string `yaml:"steam_dir" env:"STEAM_DIR"`

	LogFile  string `yaml:"log_file" env:"LOG_FILE" validate:"required"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	ExitPollInterval  time.Duration `yaml:"exit_poll_interval" env:"EXIT_POLL_INTERVAL" validate:"gt=0"`
	ExitMaxWait       time.Duration `yaml:"exit_max_wait" env:"EXIT_MAX_WAIT" validate:"gtefield=ExitPollInterval"`
	LoginPollInterval time.Duration `yaml:"login_poll_interval" env:"LOGIN_POLL_INTERVAL" validate:"gt=0"`
	LoginMaxRetries   int           `yaml:"login_max_retries" env:"LOGIN_MAX_RETRIES" validate:"gte=1,lte=600"`

	// Launchers replaces the executable set of individual launchers,
	// keyed by launcher id.
	Launchers map[string][]string `yaml:"launchers" validate:"dive,keys,required,endkeys,min=1,dive,required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogFile:           filepath.Join(defaultDir(), "launchmgr.log"),
		LogLevel:          "info",
		ExitPollInterval:  500 * time.Millisecond,
		ExitMaxWait:       10 * time.Second,
		LoginPollInterval: time.Second,
		LoginMaxRetries:   30,
	}
}

// DefaultPath returns where the config file is looked for by default.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.yaml")
}

func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "launchmgr")
}

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and launcher ids.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.LauncherOverrides(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LauncherOverrides returns Launchers keyed by parsed launcher id.
func (c *Config) LauncherOverrides() (map[domain.LauncherID][]string, error) {
	out := make(map[domain.LauncherID][]string, len(c.Launchers))
	for key, paths := range c.Launchers {
		id, err := domain.ParseLauncherID(key)
		if err != nil {
			return nil, fmt.Errorf("launchers: %w", err)
		}
		out[id] = paths
	}
	return out, nil
}
