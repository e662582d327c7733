// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"colhash/internal/anonymize"
	"colhash/internal/sqlast"
)

// AuthConfig holds bearer token authentication settings. Auth is off when
// neither an issuer nor a shared secret is configured.
type AuthConfig struct {
	IssuerURL string // OIDC issuer URL; tokens are verified against its JWKS
	Audience  string // required audience (OIDC client ID)
	JWTSecret string // HS256 shared secret for local/dev tokens
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != ""
}

// Enabled returns true when any bearer token validator is configured.
func (a *AuthConfig) Enabled() bool {
	return a.OIDCEnabled() || a.JWTSecret != ""
}

// Validate checks that the auth configuration is internally consistent.
func (a *AuthConfig) Validate() error {
	if a.IssuerURL != "" && a.Audience == "" {
		return fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ISSUER_URL is set")
	}
	return nil
}

// Config holds the configuration for the mapping store, the hashing service
// and the HTTP transport.
type Config struct {
	StoreDriver   string // "sqlite" (default) or "duckdb"
	StorePath     string // mapping store file (default "hash_records.sqlite")
	StoreReadPool int    // SQLite read pool size (default 4)

	DefaultDialect      string              // dialect for calls that name none (default "mysql")
	TokenAlgorithm      anonymize.Algorithm // keyed digest for tokens (default hmac-sha256)
	MaintenanceSchedule string              // cron spec for store maintenance, "off" disables

	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"
	UIEnabled  bool   // serve the HTML editor under /ui (default true)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 50)
	RateLimitBurst int     // burst capacity (default 100)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	Auth AuthConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps a level name to an slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Dialect resolves DefaultDialect. LoadFromEnv has already validated it.
func (c *Config) Dialect() sqlast.Dialect {
	d, _ := sqlast.LookupDialect(c.DefaultDialect)
	return d
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		StoreDriver:         strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER"))),
		StorePath:           os.Getenv("STORE_PATH"),
		DefaultDialect:      os.Getenv("DEFAULT_DIALECT"),
		MaintenanceSchedule: os.Getenv("MAINTENANCE_SCHEDULE"),
		ListenAddr:          os.Getenv("LISTEN_ADDR"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		Env:                 os.Getenv("ENV"),
		UIEnabled:           parseBoolEnvDefault("UI_ENABLED", true),
	}

	if v := os.Getenv("STORE_READ_POOL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("STORE_READ_POOL must be a positive integer, got %q", v)
		}
		cfg.StoreReadPool = n
	}

	algo, err := anonymize.ParseAlgorithm(os.Getenv("TOKEN_ALGORITHM"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_ALGORITHM: %w", err)
	}
	cfg.TokenAlgorithm = algo

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	cfg.Auth = AuthConfig{
		IssuerURL: os.Getenv("AUTH_ISSUER_URL"),
		Audience:  os.Getenv("AUTH_AUDIENCE"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	// Defaults
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = "sqlite"
	}
	if cfg.StoreDriver != "sqlite" && cfg.StoreDriver != "duckdb" {
		return nil, fmt.Errorf("STORE_DRIVER must be sqlite or duckdb, got %q", cfg.StoreDriver)
	}
	if cfg.StorePath == "" {
		cfg.StorePath = "hash_records.sqlite"
		if cfg.StoreDriver == "duckdb" {
			cfg.StorePath = "hash_records.duckdb"
		}
	}
	if cfg.StoreReadPool == 0 {
		cfg.StoreReadPool = 4
	}
	if cfg.DefaultDialect == "" {
		cfg.DefaultDialect = "mysql"
	}
	if _, ok := sqlast.LookupDialect(cfg.DefaultDialect); !ok {
		return nil, fmt.Errorf("DEFAULT_DIALECT %q is not supported (supported: %s)",
			cfg.DefaultDialect, strings.Join(sqlast.DialectNames(), ", "))
	}
	if cfg.MaintenanceSchedule == "" {
		cfg.MaintenanceSchedule = "@every 1h"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 50
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 100
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if !cfg.Auth.Enabled() {
		cfg.Warnings = append(cfg.Warnings, "authentication is disabled: set AUTH_ISSUER_URL or JWT_SECRET")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.Auth.Enabled() {
			return nil, fmt.Errorf("authentication must be configured in production (set AUTH_ISSUER_URL or JWT_SECRET)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	default:
		return defaultVal
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes matching surrounding double or single quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
