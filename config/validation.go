package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks that the configuration is usable
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 0 || port > 65535 {
		add("SERVER_PORT", "must be a port number, got %q", cfg.ServerPort)
	}
	if cfg.ShutdownTimeout <= 0 {
		add("SHUTDOWN_TIMEOUT", "must be positive")
	}

	switch cfg.StoreBackend {
	case StoreMemory, StoreSQLite:
	default:
		add("STORE_BACKEND", "unknown backend %q, want memory or sqlite", cfg.StoreBackend)
	}
	if cfg.SeedFile != "" {
		if _, err := os.Stat(cfg.SeedFile); err != nil {
			add("SEED_FILE", "cannot read %s: %v", cfg.SeedFile, err)
		}
	}

	if cfg.RateLimit < 0 {
		add("RATE_LIMIT", "must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateLimitWindow <= 0 {
		add("RATE_LIMIT_WINDOW", "must be positive when RATE_LIMIT is set")
	}
	if cfg.RedisDB < 0 {
		add("REDIS_DB", "must not be negative")
	}

	// Production deployments with Redis must authenticate
	if cfg.Environment == Production && cfg.RedisEnabled() && cfg.RedisURL == "" && cfg.RedisPassword == "" {
		add("REDIS_PASSWORD", "redis_password secret is required in production")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
