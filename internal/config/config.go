package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	AppPort     string
	Environment string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	// Support platform integration (federated login).
	PlatformAPIURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	SessionTTL    time.Duration
	CookieSecure  bool
	DefaultLocale string
}

// Load reads configuration from the environment. Missing required
// variables are reported together so a broken deployment fails once.
func Load() (Config, error) {

	cfg := Config{
		AppPort:     getEnv("APP_PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		PlatformAPIURL: os.Getenv("PLATFORM_API_URL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		SessionTTL:    24 * time.Hour,
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
	}

	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid SESSION_TTL %q: %w", raw, err)
		}
		cfg.SessionTTL = ttl
	}

	// Cookies follow the deployment grade unless overridden.
	cfg.CookieSecure = cfg.Environment == "production"
	if raw := os.Getenv("COOKIE_SECURE"); raw != "" {
		cfg.CookieSecure = raw == "true" || raw == "1"
	}

	var missing []string
	if cfg.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if cfg.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if cfg.PlatformAPIURL == "" {
		missing = append(missing, "PLATFORM_API_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config: missing required env vars: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
