package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrNotFound is returned by FindConfigFile when no location holds a file.
var ErrNotFound = errors.New("no config file found")

// Config represents the application configuration
type Config struct {
	Logging Logging `toml:"logging"`

	Mailbox struct {
		Dir string `toml:"dir"`
	} `toml:"mailbox"`

	Server struct {
		Listen string `toml:"listen"`
	} `toml:"server"`

	Scan struct {
		Workers int `toml:"workers"`
	} `toml:"scan"`

	// Store configures the suppression list. An empty path disables it.
	Store struct {
		Path string `toml:"path"`
	} `toml:"store"`
}

// Logging selects the slog handler.
type Logging struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Mailbox.Dir = "."
	cfg.Server.Listen = ":8080"
	cfg.Scan.Workers = 4
	return cfg
}

// FindConfigFile looks for a configuration file in common locations. An
// explicit path is the only place checked.
func FindConfigFile(configPath string) (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return "", fmt.Errorf("config file not found at specified path: %s", configPath)
		}
		return configPath, nil
	}

	locations := []string{
		"./bounceview.toml",
		os.ExpandEnv("$HOME/.bounceview.toml"),
		"/etc/bounceview/bounceview.toml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	return "", ErrNotFound
}

// LoadConfig loads the configuration. Without an explicit path and without
// a file in any default location it returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	configFile, err := FindConfigFile(configPath)
	if errors.Is(err, ErrNotFound) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing TOML configuration: %w", err)
	}

	// relative paths are relative to the config file
	base := filepath.Dir(configFile)
	cfg.Mailbox.Dir = resolve(base, cfg.Mailbox.Dir)
	cfg.Store.Path = resolve(base, cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configFile, err)
	}
	return cfg, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logging level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	if c.Mailbox.Dir == "" {
		return errors.New("mailbox.dir must be set")
	}
	if c.Server.Listen == "" {
		return errors.New("server.listen must be set")
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be at least 1, got %d", c.Scan.Workers)
	}
	return nil
}
