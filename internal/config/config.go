package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	GoogleClientID string
	CORSOrigin     string
	Env            string
	DevTokenSecret string
}

// Load reads the environment (optionally seeded from a .env file).
// DATABASE_URL is always required; GOOGLE_CLIENT_ID is required outside dev.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		GoogleClientID: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		CORSOrigin:     strings.TrimSpace(os.Getenv("CORS_ORIGIN")),
		Env:            strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))),
		DevTokenSecret: strings.TrimSpace(os.Getenv("DEV_TOKEN_SECRET")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	if cfg.IsDev() {
		if cfg.DevTokenSecret == "" {
			return nil, fmt.Errorf("DEV_TOKEN_SECRET is not set (required when ENV=dev)")
		}
	} else if cfg.GoogleClientID == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID is not set")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
