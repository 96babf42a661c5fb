package config

import "github.com/nibzard/crystal-kanban/internal/kanbandir"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultDBPath          = kanbandir.DefaultDBPath
	DefaultLogDir          = kanbandir.DefaultLogDir
	DefaultLocale          = "en"
	DefaultReadConcurrency = 4
	DefaultRunLogs         = true
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Config holds the full configuration for kanban.
type Config struct {
	// Paths
	DBPath string `toml:"db_path"`
	LogDir string `toml:"log_dir"`

	// Loader
	Locale          string `toml:"locale"`
	ReadConcurrency int    `toml:"read_concurrency"`

	// Write a JSONL record of every load under LogDir
	RunLogs bool `toml:"run_logs"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory at load time (computed)
	WorkDir string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"db_path",
		"log_dir",
		"locale",
		"read_concurrency",
		"run_logs",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the configurable keys in display order.
func Fields() []string {
	return configFields()
}

// Value returns the effective value of a configuration key as a string.
func (c *Config) Value(field string) string {
	switch field {
	case "db_path":
		return c.DBPath
	case "log_dir":
		return c.LogDir
	case "locale":
		return c.Locale
	case "read_concurrency":
		return itoa(c.ReadConcurrency)
	case "run_logs":
		return btoa(c.RunLogs)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return btoa(c.LogTimestamps)
	case "log_caller":
		return btoa(c.LogCaller)
	}
	return ""
}
