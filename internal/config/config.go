// Package config loads server settings from an optional TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds server settings.
type Config struct {
	Addr      string      `toml:"addr"`
	LogLevel  string      `toml:"log_level"`
	UploadDir string      `toml:"upload_dir"`
	Logo      LogoConfig  `toml:"logo"`
	Cache     CacheConfig `toml:"cache"`
}

// LogoConfig bounds logo fetching and uploads. Remote logos are off unless
// AllowRemote is set, and even then only public addresses are fetched.
type LogoConfig struct {
	AllowRemote  bool     `toml:"allow_remote"`
	FetchTimeout Duration `toml:"fetch_timeout"`
	MaxBytes     int64    `toml:"max_bytes"`
}

// CacheConfig selects the preview cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"` // memory, redis or none
	TTL           Duration `toml:"ttl"`
	MaxEntries    int      `toml:"max_entries"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// Duration decodes TOML strings such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:      ":8080",
		LogLevel:  "info",
		UploadDir: "uploads",
		Logo: LogoConfig{
			FetchTimeout: Duration{10 * time.Second},
			MaxBytes:     5 << 20,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTL:        Duration{time.Hour},
			MaxEntries: 512,
			RedisAddr:  "localhost:6379",
		},
	}
}

// Load reads path over the defaults (an empty path skips the file) and then
// applies the PORT environment variable.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Cache.Backend)) {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Logo.MaxBytes <= 0 {
		return fmt.Errorf("logo.max_bytes must be positive")
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}
