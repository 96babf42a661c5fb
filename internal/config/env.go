package config

import (
	"os"
	"strconv"

	"github.com/nibzard/crystal-kanban/internal/utils"
)

// loadFromEnv overrides config from KANBAN_* environment variables and
// records each override in sources.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setEnv := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("KANBAN_DB"); v != "" {
		cfg.DBPath = v
		setEnv("db_path")
	}
	if v := os.Getenv("KANBAN_LOG_DIR"); v != "" {
		cfg.LogDir = v
		setEnv("log_dir")
	}
	if v := os.Getenv("KANBAN_LOCALE"); v != "" {
		cfg.Locale = v
		setEnv("locale")
	}
	if v := os.Getenv("KANBAN_READ_CONCURRENCY"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.ReadConcurrency = i
			setEnv("read_concurrency")
		}
	}
	if v := os.Getenv("KANBAN_RUN_LOGS"); v != "" {
		cfg.RunLogs = utils.BoolFromString(v)
		setEnv("run_logs")
	}

	// Logging configuration
	if v := os.Getenv("KANBAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv("KANBAN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv("KANBAN_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = utils.BoolFromString(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv("KANBAN_LOG_CALLER"); v != "" {
		cfg.LogCaller = utils.BoolFromString(v)
		setEnv("log_caller")
	}
}
