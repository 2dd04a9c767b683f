package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the hitrack configuration
type Config struct {
	ServerName string            `yaml:"serverName,omitempty" env:"HITRACK_SERVER_NAME"`
	ServerPort string            `yaml:"serverPort,omitempty" env:"HITRACK_SERVER_PORT"`
	ScriptName string            `yaml:"scriptName,omitempty" env:"HITRACK_SCRIPT_NAME"`
	HTTPS      *bool             `yaml:"https,omitempty" env:"HITRACK_HTTPS"`
	Headers    map[string]string `yaml:"headers,omitempty" env:"HITRACK_HEADERS"` // Default headers for all requests
	Env        map[string]string `yaml:"env,omitempty"`                           // Extra env entries, e.g. REMOTE_ADDR
	LogLevel   string            `yaml:"logLevel,omitempty" env:"HITRACK_LOG_LEVEL"`
	NoColor    *bool             `yaml:"noColor,omitempty" env:"HITRACK_NO_COLOR"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetHTTPS returns the https setting, defaulting to false
func (c *Config) GetHTTPS() bool {
	return getBool(c.HTTPS, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".hitrack.yaml",
	".hitrack.yml",
	"hitrack.yaml",
	".hitrack.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		cfg, err := loadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		return applyEnvironment(cfg, filepath.Dir(path))
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory. The
// result always has HITRACK_* environment overrides applied, also when no
// file is found.
func FindAndLoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			cfg, err = loadConfigFromFile(configPath)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	return applyEnvironment(cfg, dir)
}

// loadConfigFromFile loads configuration from a specific file. JSON files
// are read by the YAML decoder too.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// applyEnvironment loads dir/.env without overriding variables that are
// already set, then applies HITRACK_* variables on top of cfg.
func applyEnvironment(cfg *Config, dir string) (*Config, error) {
	dotenv := filepath.Join(dir, ".env")
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg.Merge(&fromEnv), nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.ServerName != "" {
		result.ServerName = other.ServerName
	}
	if other.ServerPort != "" {
		result.ServerPort = other.ServerPort
	}
	if other.ScriptName != "" {
		result.ScriptName = other.ScriptName
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}

	// Boolean flags - only override if explicitly set in other config
	if other.HTTPS != nil {
		result.HTTPS = other.HTTPS
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	result.Headers = mergeMaps(c.Headers, other.Headers)
	result.Env = mergeMaps(c.Env, other.Env)

	return &result
}

func mergeMaps(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return a
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// BaseEnv returns the env entries every request built with this config
// starts from.
func (c *Config) BaseEnv() *environ.Env {
	e := environ.FromMap(c.Env)
	if c.ServerName != "" {
		e.Set(environ.KeyServerName, c.ServerName)
	}
	if c.ServerPort != "" {
		e.Set(environ.KeyServerPort, c.ServerPort)
	}
	if c.ScriptName != "" {
		e.Set(environ.KeyScriptName, c.ScriptName)
	}
	if c.GetHTTPS() {
		e.Set(environ.KeyHTTPS, "on")
	}
	return e
}

// ErrInvalidLogLevel is returned by SlogLevel for unknown level names.
var ErrInvalidLogLevel = errors.New("invalid log level")

// SlogLevel parses LogLevel. The boolean is false when no level is set.
func (c *Config) SlogLevel() (slog.Level, bool, error) {
	if c.LogLevel == "" {
		return 0, false, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return level, true, nil
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
