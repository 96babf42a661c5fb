package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate reports every invalid setting in one joined error.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path: must not be empty"))
	}
	if c.ReadConcurrency < 1 {
		errs = append(errs, fmt.Errorf("read_concurrency: must be at least 1, got %d", c.ReadConcurrency))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale: %q is not a valid language tag", c.Locale))
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("log_format: unknown format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
