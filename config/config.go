// Package config loads runtime settings from config.yaml, .env and the environment.
// File: config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSessionSecret is the development session key. Release mode refuses it.
const DefaultSessionSecret = "secret"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Page      PageConfig      `mapstructure:"page"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	Mode           string `mapstructure:"mode"`
	ApplicationURL string `mapstructure:"application_url"`
	WebsocketURL   string `mapstructure:"websocket_url"`
	SessionSecret  string `mapstructure:"session_secret"`
	StaticDir      string `mapstructure:"static_dir"`
}

type CatalogConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

type PageConfig struct {
	SkeletonPath    string        `mapstructure:"skeleton_path"`
	VerifyDelay     time.Duration `mapstructure:"verify_delay"`
	FeedbackTimeout time.Duration `mapstructure:"feedback_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	// ConnectGrace is how long a served page waits for its socket before it is dropped.
	ConnectGrace       time.Duration `mapstructure:"connect_grace"`
	MaxPagesPerBrowser int           `mapstructure:"max_pages_per_browser"`
	MaxPages           int           `mapstructure:"max_pages"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type AdminConfig struct {
	// PasswordHash is a bcrypt hash; empty disables admin login.
	PasswordHash string `mapstructure:"password_hash"`
}

type MetricsConfig struct {
	CloudWatch bool   `mapstructure:"cloudwatch"`
	Namespace  string `mapstructure:"namespace"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.application_url", "http://localhost:8080")
	v.SetDefault("server.websocket_url", "ws://localhost:8080/ui")
	v.SetDefault("server.session_secret", DefaultSessionSecret)
	v.SetDefault("server.static_dir", "./static")

	v.SetDefault("catalog.path", "data/catalog.json")
	v.SetDefault("catalog.watch", true)

	v.SetDefault("page.skeleton_path", "")
	v.SetDefault("page.verify_delay", 500*time.Millisecond)
	v.SetDefault("page.feedback_timeout", 5*time.Second)
	v.SetDefault("page.idle_timeout", 30*time.Minute)
	v.SetDefault("page.connect_grace", time.Minute)
	v.SetDefault("page.max_pages_per_browser", 10)
	v.SetDefault("page.max_pages", 5000)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.key_prefix", "ctf_solved_")
	v.SetDefault("storage.sqlite_path", "data/solved.db")
	v.SetDefault("storage.redis_addr", "localhost:6379")

	v.SetDefault("metrics.namespace", "CTFCatalog")

	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("log.file", "logs/app.log")
}

// LoadConfig reads `config.yaml` from path if present, then .env, then the environment.
// A missing config file is not an error; every key has a default.
func LoadConfig(path string) (*Config, error) {
	// .env is optional in every environment
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CTF")
	v.AutomaticEnv()

	setDefaults(v)

	// Server
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.mode", "GIN_MODE")
	_ = v.BindEnv("server.application_url", "APPLICATION_URL")
	_ = v.BindEnv("server.websocket_url", "WEBSOCKET_URL")
	_ = v.BindEnv("server.session_secret", "SESSION_SECRET")

	// Catalog
	_ = v.BindEnv("catalog.path", "CATALOG_PATH")

	// Storage
	_ = v.BindEnv("storage.type", "STORAGE_TYPE")
	_ = v.BindEnv("storage.sqlite_path", "SQLITE_PATH")
	_ = v.BindEnv("storage.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("storage.redis_password", "REDIS_PASSWORD")

	// Admin
	_ = v.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}
	switch c.Storage.Type {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Server.Mode == "release" && (c.Server.SessionSecret == "" || c.Server.SessionSecret == DefaultSessionSecret) {
		return errors.New("session secret must be set in release mode")
	}
	if c.Page.VerifyDelay <= 0 || c.Page.FeedbackTimeout <= 0 {
		return errors.New("page delays must be positive")
	}
	if c.Page.IdleTimeout < 0 || c.Page.ConnectGrace < 0 {
		return errors.New("page timeouts must not be negative")
	}
	if c.Page.MaxPagesPerBrowser < 0 || c.Page.MaxPages < 0 {
		return errors.New("page limits must not be negative")
	}
	if c.Catalog.Path == "" {
		return errors.New("catalog path is required")
	}
	return nil
}
