// Package config loads settings from defaults, an optional YAML file and
// TICTACTOE_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. TICTACTOE_SERVER_ADDR
// maps to server.addr.
const EnvPrefix = "TICTACTOE_"

// PathEnvVar names the environment variable holding the config file path.
const PathEnvVar = "TICTACTOE_CONFIG"

// DefaultPath is read when present and PathEnvVar is unset.
const DefaultPath = "config.yaml"

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
	Game   GameConfig   `koanf:"game"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type GameConfig struct {
	// AIFirst lets the engine open every new game.
	AIFirst bool `koanf:"ai_first"`
}

// Errors returned by Validate.
var (
	ErrEmptyAddr    = errors.New("server.addr must not be empty")
	ErrBadTimeout   = errors.New("server.shutdown_timeout must be positive")
	ErrBadLogFormat = errors.New("log.format must be json or console")
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. An explicit path that does not exist is an
// error; a missing DefaultPath is not.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, explicit := os.LookupEnv(PathEnvVar)
	if !explicit {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransform maps TICTACTOE_SERVER_SHUTDOWN_TIMEOUT to
// server.shutdown_timeout: the first underscore separates the section.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + field
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return ErrEmptyAddr
	}
	if c.Server.ShutdownTimeout <= 0 {
		return ErrBadTimeout
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: %q", ErrBadLogFormat, c.Log.Format)
	}
	return nil
}
