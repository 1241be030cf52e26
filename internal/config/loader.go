// Package config loads environment driven configuration for the camp
// planner API.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the API server.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	TokenSecret string
	TokenTTL    time.Duration
	OpenSignup  bool
}

// Load parses configuration from the current process environment. A .env
// file in the working directory is applied first when present; real
// environment variables take precedence over it.
func Load() (Config, error) {
	// Ignore a missing .env; it is a development convenience only.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:campplanner.db?_pragma=foreign_keys(1)",
		TokenTTL:   8 * 24 * time.Hour,
		OpenSignup: true,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CAMP_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CAMP_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CAMP_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("CAMP_TOKEN_SECRET")); secret == "" {
		missing = append(missing, "CAMP_TOKEN_SECRET")
	} else {
		cfg.TokenSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CAMP_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CAMP_TOKEN_TTL")
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if signupValue := strings.TrimSpace(os.Getenv("CAMP_OPEN_SIGNUP")); signupValue != "" {
		signup, err := strconv.ParseBool(signupValue)
		if err != nil {
			invalid = append(invalid, "CAMP_OPEN_SIGNUP")
		} else {
			cfg.OpenSignup = signup
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
