package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// StoreBackend selects the recipe collection implementation.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreSQLite StoreBackend = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	LogLevel        string

	// Recipe collection
	StoreBackend StoreBackend
	SeedFile     string
	SeedDefaults bool
	StrictDelete bool

	// Redis configuration, optional
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Rate limiting of mutating routes; 0 disables it
	RateLimit       int
	RateLimitWindow time.Duration
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		Environment:     Development,
		ServerHost:      "",
		ServerPort:      "8080",
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
		StoreBackend:    StoreMemory,
		SeedDefaults:    true,
		RedisPort:       "6379",
		RateLimitWindow: time.Minute,
	}
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	cfg := Default()
	cfg.Environment = GetEnvironment()

	r := &envReader{}
	cfg.ServerHost = r.str("SERVER_HOST", cfg.ServerHost)
	cfg.ServerPort = r.str("SERVER_PORT", cfg.ServerPort)
	cfg.ShutdownTimeout = r.duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.CORSOrigins = r.list("CORS_ORIGINS")
	cfg.LogLevel = r.str("LOG_LEVEL", cfg.LogLevel)

	cfg.StoreBackend = StoreBackend(strings.ToLower(r.str("STORE_BACKEND", string(cfg.StoreBackend))))
	cfg.SeedFile = r.str("SEED_FILE", "")
	cfg.SeedDefaults = r.boolean("SEED_DEFAULTS", cfg.SeedDefaults)
	cfg.StrictDelete = r.boolean("STRICT_DELETE", cfg.StrictDelete)

	cfg.RedisURL = r.str("REDIS_URL", "")
	cfg.RedisHost = r.str("REDIS_HOST", "")
	cfg.RedisPort = r.str("REDIS_PORT", cfg.RedisPort)
	cfg.RedisPassword = r.str("REDIS_PASSWORD", "")
	cfg.RedisDB = r.integer("REDIS_DB", 0)

	cfg.RateLimit = r.integer("RATE_LIMIT", 0)
	cfg.RateLimitWindow = r.duration("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)

	// In production the Redis password comes from Docker secrets
	if cfg.Environment == Production && cfg.RedisPassword == "" {
		cfg.RedisPassword = readSecret("redis_password")
	}

	if len(r.errs) > 0 {
		return nil, fmt.Errorf("failed to load configuration: %w", r.errs)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// envReader parses variables and collects every malformed value.
type envReader struct {
	errs ValidationErrors
}

func (r *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *envReader) list(key string) []string {
	v := r.str(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (r *envReader) boolean(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: fmt.Sprintf("invalid boolean %q", v)})
		return def
	}
	return b
}

func (r *envReader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: fmt.Sprintf("invalid integer %q", v)})
		return def
	}
	return n
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: fmt.Sprintf("invalid duration %q", v)})
		return def
	}
	return d
}
