package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort            = 8080
	defaultEnv             = "development"
	defaultDSN             = "root:password@tcp(127.0.0.1:3306)/inkwell?charset=utf8mb4&parseTime=True&loc=Local"
	defaultRedisURL        = "redis://localhost:6379/0"
	defaultAccessTTLMins   = 120
	defaultRefreshTTLMins  = 10080
	defaultRateLimitMax    = 100
	defaultRateLimitWindow = 60
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"` // "development" | "production"
	DSN            string   `yaml:"dsn"` // MySQL DSN
	RedisURL       string   `yaml:"redis_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	JWTSecret      string   `yaml:"jwt_secret"`

	AccessTokenTTLMinutes  int `yaml:"access_token_ttl_minutes"`
	RefreshTokenTTLMinutes int `yaml:"refresh_token_ttl_minutes"`

	RateLimitMax           int `yaml:"rate_limit_max"`
	RateLimitWindowSeconds int `yaml:"rate_limit_window_seconds"`
}

// Load reads the YAML config file, applies defaults, then environment
// overrides. A missing file is not an error: defaults plus environment
// variables make a complete configuration.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DSN == "" {
		cfg.DSN = defaultDSN
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = defaultRedisURL
	}
	if cfg.AccessTokenTTLMinutes <= 0 {
		cfg.AccessTokenTTLMinutes = defaultAccessTTLMins
	}
	if cfg.RefreshTokenTTLMinutes <= 0 {
		cfg.RefreshTokenTTLMinutes = defaultRefreshTTLMins
	}
	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = defaultRateLimitMax
	}
	if cfg.RateLimitWindowSeconds <= 0 {
		cfg.RateLimitWindowSeconds = defaultRateLimitWindow
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// AccessTokenTTL returns the access-token lifetime.
func (c *AppConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh-token lifetime.
func (c *AppConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLMinutes) * time.Minute
}

// RateLimitWindow returns the rate-limiter window size.
func (c *AppConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
