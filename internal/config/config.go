package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing file means defaults.
const DefaultPath = "turing.yaml"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds the CLI and server configuration.
type Config struct {
	// Dir is the machine library directory. Empty means the built-in machines.
	Dir      string `yaml:"dir"`
	LogLevel string `yaml:"log_level"`
	// LogFile additionally receives JSON logs when set.
	LogFile string `yaml:"log_file"`

	Limits Limits       `yaml:"limits"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
}

// Limits bound runs and searches that do not ask for an explicit bound.
type Limits struct {
	MaxSteps       int `yaml:"max_steps"`
	MaxGenerations int `yaml:"max_generations"`
	// Window is the width of rendered tape windows.
	Window int `yaml:"window"`
}

// ServerConfig configures `turing serve`.
type ServerConfig struct {
	Port int `yaml:"port"`
	// Metrics enables GET /metrics.
	Metrics bool `yaml:"metrics"`
}

// StoreConfig selects where runs are persisted.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
	// EncryptionKey is a base64 AES-256 key; when set, checkpoints are stored sealed.
	EncryptionKey string `yaml:"encryption_key"`
}

// RedisConfig configures the redis store and the distributed locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// Overrides optionally overrides values from the file and the environment.
//
// A nil pointer means "use the file/environment/default value".
type Overrides struct {
	Dir      *string
	LogLevel *string
	Port     *int
	Backend  *string
	Path     *string
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel: "info",
		Limits: Limits{
			MaxSteps:       10000,
			MaxGenerations: 1000,
			Window:         21,
		},
		Server: ServerConfig{
			Port:    8080,
			Metrics: true,
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "turing:",
				LockTTL: 30 * time.Second,
			},
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment
// variables (TURING_DIR, TURING_LOG_LEVEL, TURING_PORT, TURING_STORE, REDIS_ADDR,
// TURING_STORE_KEY) and finally the explicit overrides.
// A missing file is not an error unless required is set.
func Load(path string, required bool, overrides Overrides) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	apply(&cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TURING_DIR"); v != "" {
		cfg.Dir = v
	}
	if v := os.Getenv("TURING_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TURING_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("TURING_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv("TURING_STORE_KEY"); v != "" {
		cfg.Store.EncryptionKey = v
	}
}

func apply(cfg *Config, o Overrides) {
	if o.Dir != nil {
		cfg.Dir = *o.Dir
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.Port != nil {
		cfg.Server.Port = *o.Port
	}
	if o.Backend != nil {
		cfg.Store.Backend = *o.Backend
	}
	if o.Path != nil {
		cfg.Store.Path = *o.Path
	}
}

// Validate checks the values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store backend %q (memory, file, redis, sqlite)", c.Store.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Limits.MaxSteps <= 0 || c.Limits.MaxGenerations <= 0 {
		return errors.New("limits must be positive")
	}
	return nil
}
