// Package config loads arbor settings from defaults, a YAML file, a .env file
// and ARBOR_* environment variables, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read as configuration.
const EnvPrefix = "ARBOR_"

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "arbor.yaml"

// sections are the nested keys; ARBOR_HTTP_ADDR maps to http.addr.
var sections = []string{"log", "http", "redis", "navigation", "security", "input"}

type Config struct {
	// Source is a tree file, a Loam directory or an http(s) URL.
	Source string `koanf:"source" yaml:"source"`
	// Root overrides the root level declared by the source.
	Root string `koanf:"root" yaml:"root"`

	Log        LogConfig        `koanf:"log" yaml:"log"`
	HTTP       HTTPConfig       `koanf:"http" yaml:"http"`
	Redis      RedisConfig      `koanf:"redis" yaml:"redis"`
	Navigation NavigationConfig `koanf:"navigation" yaml:"navigation"`
	Security   SecurityConfig   `koanf:"security" yaml:"security"`
	Input      InputConfig      `koanf:"input" yaml:"input"`
}

type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
}

type HTTPConfig struct {
	Addr           string   `koanf:"addr" yaml:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins" yaml:"allowed_origins"`
}

// RedisConfig enables the shared session store when Addr is set.
type RedisConfig struct {
	Addr     string        `koanf:"addr" yaml:"addr"`
	Password string        `koanf:"password" yaml:"password"`
	DB       int           `koanf:"db" yaml:"db"`
	Prefix   string        `koanf:"prefix" yaml:"prefix"`
	TTL      time.Duration `koanf:"ttl" yaml:"ttl"`
}

type NavigationConfig struct {
	Strict       bool `koanf:"strict" yaml:"strict"`
	RewindOnBack bool `koanf:"rewind_on_back" yaml:"rewind_on_back"`
}

// InputConfig bounds what a user may type in a single message.
type InputConfig struct {
	MaxSize int `koanf:"max_size" yaml:"max_size"`
}

type SecurityConfig struct {
	// EncryptionKey is a 32-byte AES key, hex or base64. Empty disables encryption.
	EncryptionKey   string   `koanf:"encryption_key" yaml:"encryption_key"`
	FallbackKeys    []string `koanf:"fallback_keys" yaml:"fallback_keys"`
	RedactCompleted bool     `koanf:"redact_completed" yaml:"redact_completed"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Source: "chatbot_data.json",
		Log:    LogConfig{Level: "info"},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Redis: RedisConfig{
			Prefix: "arbor:session:",
			TTL:    24 * time.Hour,
		},
		Input: InputConfig{MaxSize: runner.DefaultMaxInputSize},
	}
}

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Debug("no .env file", "path", p)
				continue
			}
			return fmt.Errorf("reading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ARBOR_*). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must be non-negative")
	}
	if c.Input.MaxSize <= 0 {
		return fmt.Errorf("input.max_size must be positive")
	}
	if _, _, err := c.Keys(); err != nil {
		return err
	}
	return nil
}

// Sanitizer returns the input limits for every chat surface.
func (c *Config) Sanitizer() runner.Sanitizer {
	return runner.NewSanitizer(c.Input.MaxSize)
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// Keys decodes the encryption keys. A nil active key means encryption is off.
func (c *Config) Keys() (active []byte, fallback [][]byte, err error) {
	if c.Security.EncryptionKey == "" {
		if len(c.Security.FallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("security.fallback_keys requires security.encryption_key")
		}
		return nil, nil, nil
	}
	active, err = middleware.ParseKey(c.Security.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("security.encryption_key: %w", err)
	}
	for i, raw := range c.Security.FallbackKeys {
		key, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("security.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}
