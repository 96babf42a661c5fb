package config

import (
	"flag"
)

// flagFields maps global flag names to config field names.
var flagFields = map[string]string{
	"db":               "db_path",
	"log-dir":          "log_dir",
	"locale":           "locale",
	"read-concurrency": "read_concurrency",
	"run-logs":         "run_logs",
	"log-level":        "log_level",
	"log-format":       "log_format",
}

// parseFlags defines the global flags on fs and parses args. Flag defaults
// are the values resolved so far, so unset flags leave cfg unchanged.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("kanban", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Project registry database path")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Run log directory")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale used to sort task titles (BCP 47)")
	fs.IntVar(&cfg.ReadConcurrency, "read-concurrency", cfg.ReadConcurrency, "Maximum task files read in parallel")
	fs.BoolVar(&cfg.RunLogs, "run-logs", cfg.RunLogs, "Record each load in a JSONL run log")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Track which flags were set
	fs.Visit(func(f *flag.Flag) {
		if sources == nil {
			return
		}
		if fieldName, ok := flagFields[f.Name]; ok {
			sources[fieldName] = SourceFlag
		}
	})

	return nil
}
