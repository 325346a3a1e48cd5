package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/rink-sequences/internal/engine"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	CORSOrigins []string      `yaml:"cors_origins"`
	SessionIdle time.Duration `yaml:"session_idle"` // 0 keeps sessions until shutdown
}

// DataConfig points at the play-by-play data API
type DataConfig struct {
	URL         string        `yaml:"url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	RedisURL    string        `yaml:"redis_url"`
}

type StoreConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
}

// ViewConfig holds per-session view defaults
type ViewConfig struct {
	EmptyFilter   string  `yaml:"empty_filter"`
	DefaultWidth  float64 `yaml:"default_width"`
	DefaultHeight float64 `yaml:"default_height"`
}

// Config holds all application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	View   ViewConfig   `yaml:"view"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", SessionIdle: 30 * time.Minute},
		Data: DataConfig{
			HTTPTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		View: ViewConfig{
			EmptyFilter:   string(engine.EmptyFilterKeep),
			DefaultWidth:  800,
			DefaultHeight: 340,
		},
	}
}

// Load reads an optional .env file, then the YAML file at path (if any),
// then environment variables. Later sources win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Addr = getEnv("ADDR", cfg.Server.Addr)
	if v := getEnv("CORS_ORIGINS", ""); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	cfg.Data.URL = getEnv("DATA_URL", getEnv("REACT_APP_DATA_URL", cfg.Data.URL))
	cfg.Data.RedisURL = getEnv("REDIS_URL", cfg.Data.RedisURL)
	cfg.Store.DatabaseURL = getEnv("DATABASE_URL", cfg.Store.DatabaseURL)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.View.EmptyFilter = getEnv("EMPTY_FILTER", cfg.View.EmptyFilter)

	var err error
	if cfg.Data.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", cfg.Data.HTTPTimeout); err != nil {
		return err
	}
	if cfg.Data.CacheTTL, err = durationEnv("CACHE_TTL", cfg.Data.CacheTTL); err != nil {
		return err
	}
	if cfg.Server.SessionIdle, err = durationEnv("SESSION_IDLE", cfg.Server.SessionIdle); err != nil {
		return err
	}
	if cfg.Log.Dev, err = boolEnv("LOG_DEV", cfg.Log.Dev); err != nil {
		return err
	}
	if cfg.View.DefaultWidth, err = floatEnv("DEFAULT_WIDTH", cfg.View.DefaultWidth); err != nil {
		return err
	}
	if cfg.View.DefaultHeight, err = floatEnv("DEFAULT_HEIGHT", cfg.View.DefaultHeight); err != nil {
		return err
	}
	return nil
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Data.URL) == "" {
		return fmt.Errorf("%w: DATA_URL is required", ErrInvalidConfig)
	}
	if _, ok := engine.ParseEmptyFilterPolicy(cfg.View.EmptyFilter); !ok {
		return fmt.Errorf("%w: empty_filter must be keep, all or reject, got %q",
			ErrInvalidConfig, cfg.View.EmptyFilter)
	}
	if cfg.View.DefaultWidth < 0 || cfg.View.DefaultHeight < 0 {
		return fmt.Errorf("%w: default viewport must be non-negative", ErrInvalidConfig)
	}
	if cfg.Server.SessionIdle < 0 {
		return fmt.Errorf("%w: session_idle must not be negative", ErrInvalidConfig)
	}
	if cfg.Data.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http_timeout must be positive, got %s", ErrInvalidConfig, cfg.Data.HTTPTimeout)
	}
	return nil
}

// Rules converts the view section into reducer rules.
func (c *Config) Rules() engine.Rules {
	policy, _ := engine.ParseEmptyFilterPolicy(c.View.EmptyFilter)
	return engine.Rules{
		EmptyFilter: policy,
		Viewport:    engine.Viewport{Width: c.View.DefaultWidth, Height: c.View.DefaultHeight},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return b, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
