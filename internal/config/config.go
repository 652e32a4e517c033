// Package config provides configuration management for flowcanvas.
//
// Values come from, in increasing priority: built-in defaults, a YAML
// config file, and FLOWCANVAS_* environment variables (server.addr is
// FLOWCANVAS_SERVER_ADDR).
//
// Config file locations (priority order):
//  1. --config flag or $FLOWCANVAS_CONFIG
//  2. ./flowcanvas.yaml
//  3. ~/.config/flowcanvas/config.yaml
//  4. /etc/flowcanvas/config.yaml
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to environment overrides
const EnvPrefix = "FLOWCANVAS"

// SetDefaults registers every default value on v
func SetDefaults(v *viper.Viper) {
	// -- Server --
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", time.Duration(0))
	v.SetDefault("server.shutdown_grace", 10*time.Second)

	// -- History --
	v.SetDefault("history.max_size", 50)
	v.SetDefault("history.field_debounce", 500*time.Millisecond)

	// -- Submission --
	v.SetDefault("submission.endpoint", "http://localhost:8000/pipelines/parse")
	v.SetDefault("submission.timeout", 5*time.Second)

	// -- Analysis log --
	v.SetDefault("analysis_log.dsn", ":memory:")

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "flowcanvas")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
}

// NewViper creates a viper instance with defaults and environment
// overrides wired up
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path into v. An empty path searches the
// standard locations, and finding nothing there is not an error. It returns the path
// actually read, if any.
func Load(v *viper.Viper, path string) (string, error) {
	if path == "" {
		path = FindConfigPath()
	}
	if path == "" {
		return "", nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return path, fmt.Errorf("read config %s: %w", path, err)
	}
	return path, nil
}

// NewConfigFromViper decodes and validates the configuration held by v
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Validate checks value ranges and formats
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.History.MaxSize < 1 {
		return fmt.Errorf("history.max_size must be at least 1, got %d", c.History.MaxSize)
	}
	if c.History.FieldDebounce <= 0 {
		return fmt.Errorf("history.field_debounce must be positive, got %s", c.History.FieldDebounce)
	}
	if c.Submission.Endpoint != "" {
		u, err := url.Parse(c.Submission.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("submission.endpoint %q is not an absolute URL", c.Submission.Endpoint)
		}
	}
	if c.Submission.Timeout <= 0 {
		return fmt.Errorf("submission.timeout must be positive, got %s", c.Submission.Timeout)
	}
	if c.AnalysisLog.DSN == "" {
		return errors.New("analysis_log.dsn is required")
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	return nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// YAML renders the config as a config file document
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
