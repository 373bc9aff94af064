package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the configuration for the application.
type Config struct {
	Port           string
	DatabaseDriver string
	DatabaseURL    string
	AllowedOrigins []string
	LogLevel       logrus.Level
	PantryExtra    []string
	ImageBaseURL   string
}

// NewFromEnv creates a new Config object from environment variables. A .env
// file in the working directory is read first when one exists.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	driver := getenv("DATABASE_DRIVER", "postgres")
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}

	level, err := logrus.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseDriver: driver,
		DatabaseURL:    databaseURL,
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:8081")),
		LogLevel:       level,
		PantryExtra:    splitList(os.Getenv("PANTRY_EXTRA")),
		ImageBaseURL:   strings.TrimRight(os.Getenv("IMAGE_BASE_URL"), "/"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
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
