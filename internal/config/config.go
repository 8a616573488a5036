// Package config loads runtime settings. Sources are applied in order:
// built-in defaults, an optional YAML file, a .env file, process
// environment variables, and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port               string         `yaml:"port"`
	Environment        string         `yaml:"environment"`
	LogLevel           string         `yaml:"log_level"`
	Database           DatabaseConfig `yaml:"database"`
	Auth               AuthConfig     `yaml:"auth"`
	CORSAllowedOrigins []string       `yaml:"cors_allowed_origins"`
	// ProtectedPaths are page prefixes that require a session.
	ProtectedPaths []string `yaml:"protected_paths"`
	// TrustProxy honors X-Forwarded-For and X-Real-IP for the client address.
	TrustProxy bool `yaml:"trust_proxy"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// URL is a file path for sqlite and a connection URI otherwise.
	URL string `yaml:"url"`
	// Name selects the database for mongo.
	Name string `yaml:"name"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	SessionMaxAge time.Duration `yaml:"session_max_age"`
}

// Flags holds command-line overrides. Empty values are ignored.
type Flags struct {
	Port           string
	DatabaseDriver string
	DatabaseURL    string
	LogLevel       string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:        "8080",
		Environment: EnvProduction,
		LogLevel:    "info",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			URL:    "inkwell.db",
			Name:   "inkwell",
		},
		Auth: AuthConfig{
			BcryptCost: 12,
			// Secure cookies unless explicitly disabled for local development.
			CookieSecure:  true,
			SessionMaxAge: 30 * 24 * time.Hour,
		},
		CORSAllowedOrigins: []string{"*"},
		ProtectedPaths:     []string{"/admin", "/profile"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when it
// does not exist), .env and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			cfg.expandEnv()
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overrides settings with any non-empty flag values.
func (c *Config) Apply(flags *Flags) {
	if flags == nil {
		return
	}
	if flags.Port != "" {
		c.Port = flags.Port
	}
	if flags.DatabaseDriver != "" {
		c.Database.Driver = flags.DatabaseDriver
	}
	if flags.DatabaseURL != "" {
		c.Database.URL = flags.DatabaseURL
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
}

// Validate checks the settings needed to serve requests.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateDatabase checks only the store settings, for commands that do not
// issue sessions.
func (c *Config) ValidateDatabase() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unknown database driver %q (want sqlite, postgres or mongo)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Name, "DATABASE_NAME")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")

	if v := getEnv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		c.Auth.BcryptCost = cost
	}
	if v := getEnv("COOKIE_SECURE"); v != "" {
		c.Auth.CookieSecure = v != "false"
	}
	if v := getEnv("TRUST_PROXY"); v != "" {
		c.TrustProxy = v == "true"
	}
	if v := getEnv("SESSION_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_MAX_AGE: %w", err)
		}
		c.Auth.SessionMaxAge = d
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitCSV(v)
	}
	if v := getEnv("PROTECTED_PATHS"); v != "" {
		c.ProtectedPaths = splitCSV(v)
	}
	return nil
}

func (c *Config) expandEnv() {
	c.Database.URL = expandEnv(c.Database.URL)
	c.Database.Name = expandEnv(c.Database.Name)
	c.Auth.JWTSecret = expandEnv(c.Auth.JWTSecret)
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return os.ExpandEnv(s)
}
