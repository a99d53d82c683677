// Package config resolves CineShelf's runtime settings.
//
// Resolution order, later sources winning:
//
//  1. profile defaults (development, testing, production)
//  2. a TOML file named by CINESHELF_CONFIG, if set
//  3. environment variables, after .env files are loaded with godotenv
//
// An unknown profile name falls back to development.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

type Config struct {
	Env       string          `toml:"env"`
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	OMDb      OMDbConfig      `toml:"omdb"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Log       LogConfig       `toml:"log"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Path is a file path or ":memory:".
	Path string `toml:"path"`
}

type OMDbConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// RateLimitConfig throttles the title lookup route per client IP.
type RateLimitConfig struct {
	Enabled           bool `toml:"enabled"`
	RequestsPerMinute int  `toml:"requests_per_minute"`
	Burst             int  `toml:"burst"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// SlogLevel maps Level to a slog.Level, defaulting to Info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Duration lets TOML files write timeouts as "5s" or "1500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the settings of the named profile.
func Default(env string) Config {
	cfg := Config{
		Env:      EnvDevelopment,
		Server:   ServerConfig{Host: "127.0.0.1", Port: 5002},
		Database: DatabaseConfig{Path: "data/cineshelf.db"},
		OMDb: OMDbConfig{
			BaseURL: "https://www.omdbapi.com/",
			Timeout: Duration{5 * time.Second},
		},
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 10, Burst: 10},
		Log:       LogConfig{Level: "debug"},
	}

	switch strings.ToLower(strings.TrimSpace(env)) {
	case EnvTesting:
		cfg.Env = EnvTesting
		cfg.Database.Path = ":memory:"
		cfg.RateLimit.Enabled = false
		cfg.Log.Level = "error"
	case EnvProduction:
		cfg.Env = EnvProduction
		cfg.Server.Host = "0.0.0.0"
		cfg.Log.Level = "info"
	}
	return cfg
}

// Load builds the configuration from the environment.
//
// Missing .env files are ignored; a named TOML file that cannot be read or
// parsed is an error, as is any malformed numeric environment variable.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv.Load never overrides variables already set.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}

	cfg := Default(os.Getenv("CINESHELF_ENV"))

	if path := strings.TrimSpace(os.Getenv("CINESHELF_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("HOST"); ok {
		c.Server.Host = v
	}
	if err := envInt("PORT", &c.Server.Port); err != nil {
		return err
	}
	if v, ok := lookup("DB_PATH"); ok {
		c.Database.Path = v
	}
	if v, ok := lookup("OMDB_API_KEY"); ok {
		c.OMDb.APIKey = v
	}
	if v, ok := lookup("OMDB_BASE_URL"); ok {
		c.OMDb.BaseURL = v
	}
	if v, ok := lookup("OMDB_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid OMDB_TIMEOUT %q: %w", v, err)
		}
		c.OMDb.Timeout = Duration{d}
	}
	if err := envInt("RATE_LIMIT_PER_MINUTE", &c.RateLimit.RequestsPerMinute); err != nil {
		return err
	}
	if v, ok := lookup("RATE_LIMIT_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid RATE_LIMIT_ENABLED %q: %w", v, err)
		}
		c.RateLimit.Enabled = enabled
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("config: database path is required")
	}
	if c.OMDb.Timeout.Duration < 0 {
		return fmt.Errorf("config: negative omdb timeout %s", c.OMDb.Timeout)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("config: rate limit must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
