package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	History     HistoryConfig     `mapstructure:"history" yaml:"history"`
	Submission  SubmissionConfig  `mapstructure:"submission" yaml:"submission"`
	AnalysisLog AnalysisLogConfig `mapstructure:"analysis_log" yaml:"analysis_log"`
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace" yaml:"shutdown_grace"`
}

// HistoryConfig bounds and paces undo history
type HistoryConfig struct {
	MaxSize       int           `mapstructure:"max_size" yaml:"max_size"`
	FieldDebounce time.Duration `mapstructure:"field_debounce" yaml:"field_debounce"`
}

// SubmissionConfig points the submission client at a remote validator
type SubmissionConfig struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AnalysisLogConfig locates the sqlite analysis log
type AnalysisLogConfig struct {
	// DSN is a file path or ":memory:"
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}
