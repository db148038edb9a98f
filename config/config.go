// Package config loads process configuration for the rolegate server.
//
// Values come from the environment, optionally seeded from a .env file.
// The signing secret is resolved through package secret, so it may be a
// literal, a ${VAR} reference, or a secretref.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jonwraymond/rolegate/secret"
)

// Environment keys.
const (
	EnvSecret         = "JWT_SECRET"
	EnvPort           = "PORT"
	EnvTokenTTL       = "TOKEN_TTL"
	EnvTokenIssuer    = "TOKEN_ISSUER"
	EnvLogLevel       = "LOG_LEVEL"
	EnvTracing        = "TRACING_EXPORTER"
	EnvMetrics        = "METRICS_EXPORTER"
	EnvTraceSamplePct = "TRACE_SAMPLE_PCT"
	EnvCORSOrigins    = "CORS_ALLOWED_ORIGINS"
)

// Defaults.
const (
	DefaultPort     = 5000
	DefaultTokenTTL = 24 * time.Hour
	DefaultIssuer   = "rolegate"
	DefaultLogLevel = "info"
	DefaultExporter = "none"
)

var (
	// ErrMissingSecret is returned when JWT_SECRET resolves to an empty value.
	ErrMissingSecret = errors.New("config: JWT_SECRET is required")

	// ErrInvalid wraps any other validation failure.
	ErrInvalid = errors.New("config: invalid value")
)

// Config is the process configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	// Secret is the resolved HMAC signing key.
	Secret []byte

	Port     int
	TokenTTL time.Duration
	Issuer   string
	LogLevel string

	// Telemetry
	TracingExporter string
	MetricsExporter string
	TraceSamplePct  float64

	CORSOrigins []string
}

// Options control Load.
type Options struct {
	// EnvFile is loaded with godotenv before reading the environment.
	// Variables already set in the environment win. An empty value means
	// ".env", and a missing default file is not an error.
	EnvFile string

	// Resolver resolves JWT_SECRET. Defaults to secret.NewDefaultResolver().
	Resolver *secret.Resolver
}

// Load reads configuration from the environment and validates it.
func Load(ctx context.Context, opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = secret.NewDefaultResolver()
	}

	raw := os.Getenv(EnvSecret)
	var key string
	if raw != "" {
		var err error
		key, err = resolver.ResolveValue(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("config: resolve %s: %w", EnvSecret, err)
		}
	}

	cfg := &Config{
		Secret:          []byte(key),
		Issuer:          getEnv(EnvTokenIssuer, DefaultIssuer),
		LogLevel:        strings.ToLower(getEnv(EnvLogLevel, DefaultLogLevel)),
		TracingExporter: strings.ToLower(getEnv(EnvTracing, DefaultExporter)),
		MetricsExporter: strings.ToLower(getEnv(EnvMetrics, DefaultExporter)),
		CORSOrigins:     splitList(getEnv(EnvCORSOrigins, "*")),
	}

	var err error
	if cfg.Port, err = getEnvInt(EnvPort, DefaultPort); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getEnvDuration(EnvTokenTTL, DefaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.TraceSamplePct, err = getEnvFloat(EnvTraceSamplePct, 1.0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for required fields and ranges.
func (c *Config) Validate() error {
	if len(c.Secret) == 0 {
		return ErrMissingSecret
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %s %d out of range", ErrInvalid, EnvPort, c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, EnvTokenTTL)
	}
	if c.TraceSamplePct < 0 || c.TraceSamplePct > 1 {
		return fmt.Errorf("%w: %s must be between 0 and 1", ErrInvalid, EnvTraceSamplePct)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %s %q", ErrInvalid, EnvLogLevel, c.LogLevel)
	}
	return nil
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, v)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalid, key, v)
	}
	return d, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, v)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
