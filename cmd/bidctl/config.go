package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	API     apiConfig     `yaml:"api" validate:"required"`
	Session sessionConfig `yaml:"session"`
	Mirror  mirrorConfig  `yaml:"mirror"`
	Cookies cookiesConfig `yaml:"cookies"`
	Log     logConfig     `yaml:"log"`
	Metrics metricsConfig `yaml:"metrics"`
}

type apiConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Timeout string `yaml:"timeout"`
}

type sessionConfig struct {
	Bootstrap string `yaml:"bootstrap" validate:"omitempty,oneof=decode profile"`
}

type mirrorConfig struct {
	Backend     string `yaml:"backend" validate:"omitempty,oneof=none file redis"`
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPrefix string `yaml:"redis_prefix"`
	RedisDB     int    `yaml:"redis_db" validate:"min=0,max=15"`
}

type cookiesConfig struct {
	Path string `yaml:"path"`
}

type logConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

type metricsConfig struct {
	// Path, when set, receives a Prometheus text dump after each command.
	Path string `yaml:"path"`
}

func defaultFileConfig(home string) fileConfig {
	dir := filepath.Join(home, ".bidctl")
	return fileConfig{
		API:     apiConfig{Timeout: "15s"},
		Session: sessionConfig{Bootstrap: "decode"},
		Mirror:  mirrorConfig{Backend: "file", Path: filepath.Join(dir, "token.json"), RedisPrefix: "bidctl:"},
		Cookies: cookiesConfig{Path: filepath.Join(dir, "cookies.json")},
		Log:     logConfig{Level: "warn", Format: "text"},
	}
}

// loadConfig reads path over the defaults, then applies .env and
// BIDCTL_* environment overrides. A missing config file is not an error.
func loadConfig(path, envFile, home string) (fileConfig, error) {
	cfg := defaultFileConfig(home)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *fileConfig) {
	if v := os.Getenv("BIDCTL_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("BIDCTL_MIRROR"); v != "" {
		cfg.Mirror.Backend = v
	}
	if v := os.Getenv("BIDCTL_REDIS_ADDR"); v != "" {
		cfg.Mirror.RedisAddr = v
	}
	if v := os.Getenv("BIDCTL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func (c *fileConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("config validation failed: api.timeout: %w", err)
		}
	}
	return nil
}

// storeConfig maps the file settings onto a Store configuration.
func (c *fileConfig) storeConfig() goSession.Config {
	cfg := goSession.DefaultConfig()
	cfg.API.BaseURL = c.API.BaseURL
	if d, err := time.ParseDuration(c.API.Timeout); err == nil && d > 0 {
		cfg.API.Timeout = d
	}
	if c.Session.Bootstrap == "profile" {
		cfg.Session.Bootstrap = goSession.BootstrapProfile
	}
	// A CLI has no routes; every command is a protected one.
	cfg.Session.PublicRoutes = nil
	return cfg
}
