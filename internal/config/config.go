// Package config loads activity board settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Its-donkey/signup-board/logging"
)

const (
	defaultListen    = "127.0.0.1:4173"
	defaultAPIBase   = "http://127.0.0.1:8000"
	defaultAssetsDir = "ui"
	defaultLogLevel  = "info"
)

// ServerConfig configures the UI server listener and static assets.
type ServerConfig struct {
	Listen    string `yaml:"listen" env:"BOARD_LISTEN"`
	AssetsDir string `yaml:"assets_dir" env:"BOARD_ASSETS_DIR"`
}

// APIConfig points at the activities backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url" env:"BOARD_API_URL"`
}

// LogConfig selects the minimum log level and an optional rotating log file.
type LogConfig struct {
	Level      string `yaml:"level" env:"BOARD_LOG_LEVEL"`
	Dir        string `yaml:"dir" env:"BOARD_LOG_DIR"`
	File       string `yaml:"file" env:"BOARD_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"BOARD_LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"BOARD_LOG_MAX_BACKUPS"`
}

// Config is the combined runtime configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	API    APIConfig    `yaml:"api"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Listen: defaultListen, AssetsDir: defaultAssetsDir},
		API:    APIConfig{BaseURL: defaultAPIBase},
		Log:    LogConfig{Level: defaultLogLevel},
	}
}

// Load reads path (skipped when empty) and applies BOARD_* environment
// overrides. Callers apply flag overrides and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Overrides holds command-line values; empty fields leave the config alone.
type Overrides struct {
	Listen    string
	APIBase   string
	AssetsDir string
	LogFile   string
}

// Apply layers command-line values over the file and environment settings.
func (c *Config) Apply(o Overrides) {
	if v := strings.TrimSpace(o.Listen); v != "" {
		c.Server.Listen = v
	}
	if v := strings.TrimSpace(o.APIBase); v != "" {
		c.API.BaseURL = strings.TrimSuffix(v, "/")
	}
	if v := strings.TrimSpace(o.AssetsDir); v != "" {
		c.Server.AssetsDir = v
	}
	if v := strings.TrimSpace(o.LogFile); v != "" {
		c.Log.File = v
	}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Server.Listen = strings.TrimSpace(c.Server.Listen)
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListen
	}
	c.Server.AssetsDir = strings.TrimSpace(c.Server.AssetsDir)
	if c.Server.AssetsDir == "" {
		c.Server.AssetsDir = defaultAssetsDir
	}
	c.API.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBase
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = defaultLogLevel
	}
}

// Validate checks the API base is an absolute http(s) URL and the log level is known.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base_url %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api base_url %q: scheme must be http or https", c.API.BaseURL)
	}
	if u.Host == "" {
		return errors.New("invalid api base_url: missing host")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return errors.New("log max_size_mb and max_backups must not be negative")
	}
	return nil
}

// LogLevel returns the parsed minimum log level.
func (c Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// OpenLogFile opens the configured rotating log file. It returns nil when no
// file is configured.
func (c Config) OpenLogFile() (*logging.FileWriter, error) {
	if strings.TrimSpace(c.Log.File) == "" {
		return nil, nil
	}
	return logging.OpenFile(logging.FileOptions{
		Dir:        c.Log.Dir,
		Name:       c.Log.File,
		MaxBytes:   int64(c.Log.MaxSizeMB) << 20,
		MaxBackups: c.Log.MaxBackups,
	})
}
