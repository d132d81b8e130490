package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	KeycloakBaseURL string // Required: base URL of the identity provider (no trailing slash)
	KeycloakRealm   string // Required: realm users authenticate against
	AdminRealm      string // Optional: realm for the admin service account (default: same as KeycloakRealm)
	ClientID        string // Required: OAuth2 client id used for the password grant
	ClientSecret    string // Optional: empty for public clients

	DefaultAuthorities  []string      // Optional: authorities granted to every verified token (default: ROLE_USER)
	DatabaseFile        string        // Optional: path to SQLite database file (default: ./idgate.db)
	JWKSRefreshInterval time.Duration // Optional: provider key refetch cadence (default: 15m)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		KeycloakBaseURL: os.Getenv("IDGATE_KC_BASE_URL"),
		KeycloakRealm:   os.Getenv("IDGATE_KC_REALM"),
		AdminRealm: getEnvOrDefault(
			"IDGATE_KC_ADMIN_REALM",
			os.Getenv("IDGATE_KC_REALM"),
		), // Admin service accounts usually live in the same realm
		ClientID:     os.Getenv("IDGATE_KC_CLIENT_ID"),
		ClientSecret: os.Getenv("IDGATE_KC_CLIENT_SECRET"),

		DefaultAuthorities:  getEnvListOrDefault("IDGATE_DEFAULT_AUTHORITIES", []string{"ROLE_USER"}),
		DatabaseFile:        getEnvOrDefault("IDGATE_DATABASE_FILE", "idgate.db"),
		JWKSRefreshInterval: getEnvDurationOrDefault("JWKS_REFRESH_INTERVAL", 15*time.Minute),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate reports missing required settings before any network work starts.
func (c Config) Validate() error {
	switch {
	case c.KeycloakBaseURL == "":
		return fmt.Errorf("IDGATE_KC_BASE_URL is required")
	case c.KeycloakRealm == "":
		return fmt.Errorf("IDGATE_KC_REALM is required")
	case c.ClientID == "":
		return fmt.Errorf("IDGATE_KC_CLIENT_ID is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
