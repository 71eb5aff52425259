// Package config loads application settings from defaults, an optional YAML
// file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultJWTSecret is the placeholder signing secret used when JWT_SECRET is
// unset. It is only acceptable for local development.
const DefaultJWTSecret = "changeme_very_secret"

// User store policies.
const (
	UserStorePinned = "pinned"
	UserStoreFollow = "follow"
)

// Config holds every runtime setting. Keys are the lowercased environment
// variable names so that YAML files and the environment share one namespace.
type Config struct {
	AppEnv   string `koanf:"app_env"`
	Port     string `koanf:"port"`
	LogLevel string `koanf:"log_level"`

	DBHost         string        `koanf:"db_host"`
	DBPort         string        `koanf:"db_port"`
	DBUser         string        `koanf:"db_user"`
	DBPassword     string        `koanf:"db_password"`
	DBName         string        `koanf:"db_name"`
	DBMaxOpenConns int           `koanf:"db_max_open_conns"`
	DBCheckTimeout time.Duration `koanf:"db_check_timeout"`

	UserStorePolicy string `koanf:"user_store_policy"`
	SeedUsersFile   string `koanf:"seed_users_file"`

	JWTSecret    string        `koanf:"jwt_secret"`
	SessionTTL   time.Duration `koanf:"session_ttl"`
	CookieSecure bool          `koanf:"cookie_secure"`
	BcryptCost   int           `koanf:"bcrypt_cost"`

	OpenAIAPIKey  string `koanf:"openai_api_key"`
	OpenAIModel   string `koanf:"openai_model"`
	OpenAIBaseURL string `koanf:"openai_base_url"`

	GmailClientID     string `koanf:"gmail_client_id"`
	GmailClientSecret string `koanf:"gmail_client_secret"`
	GmailRefreshToken string `koanf:"gmail_refresh_token"`
	GmailUserEmail    string `koanf:"gmail_user_email"`
	GmailRedirectURL  string `koanf:"gmail_redirect_url"`

	RateLimitRedisAddr     string        `koanf:"rate_limit_redis_addr"`
	RateLimitRedisPassword string        `koanf:"rate_limit_redis_password"`
	RateLimitRedisDB       int           `koanf:"rate_limit_redis_db"`
	AuthRateLimit          int           `koanf:"auth_rate_limit"`
	AuthRateWindow         time.Duration `koanf:"auth_rate_window"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		AppEnv:   "development",
		Port:     "3000",
		LogLevel: "info",

		DBHost:         "localhost",
		DBPort:         "3306",
		DBUser:         "root",
		DBName:         "outreach",
		DBMaxOpenConns: 10,
		DBCheckTimeout: 3 * time.Second,

		UserStorePolicy: UserStorePinned,

		JWTSecret:  DefaultJWTSecret,
		SessionTTL: 7 * 24 * time.Hour,
		BcryptCost: 10,

		OpenAIModel: "gpt-3.5-turbo",

		GmailRedirectURL: "http://localhost:3000/oauth2callback",

		AuthRateLimit:  10,
		AuthRateWindow: time.Minute,
	}
}

// Load builds a Config from defaults, then the YAML file at path (if
// non-empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	// Blank values are treated as unset, like an empty .env entry.
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		cfg.JWTSecret = DefaultJWTSecret
	}

	return cfg, nil
}

// envKey maps DB_HOST to db_host. Variables outside the known key set are
// loaded too but never unmarshalled.
func envKey(s string) string {
	return strings.ToLower(s)
}

// Validate reports every setting that is out of range.
func (c Config) Validate() error {
	var errs []error
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between 4 and 14, got %d", c.BcryptCost))
	}
	if c.UserStorePolicy != UserStorePinned && c.UserStorePolicy != UserStoreFollow {
		errs = append(errs, fmt.Errorf("user_store_policy must be %q or %q, got %q", UserStorePinned, UserStoreFollow, c.UserStorePolicy))
	}
	if c.DBMaxOpenConns <= 0 {
		errs = append(errs, errors.New("db_max_open_conns must be positive"))
	}
	if c.DBCheckTimeout <= 0 {
		errs = append(errs, errors.New("db_check_timeout must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateWindow <= 0 {
		errs = append(errs, errors.New("auth_rate_limit and auth_rate_window must be positive"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// UsesDefaultSecret reports whether the insecure placeholder secret is active.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// GmailConfigured reports whether all credentials for the Gmail API are set.
func (c Config) GmailConfigured() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
}
