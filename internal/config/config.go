// Package config loads process configuration from the environment. A .env
// file is honored when present so local development matches production
// wiring. Credentials live on the Config struct and are injected into
// clients at construction time; nothing in this repository reads the
// environment after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the process needs.
type Config struct {
	// Port the HTTP API listens on.
	Port string
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string

	// WikipediaBaseURL overrides the MediaWiki API endpoint (tests).
	WikipediaBaseURL string
	// UserAgent identifies us to upstream APIs.
	UserAgent string

	// TMDBAPIKey authorizes The Movie Database lookups. Optional; movie
	// and series endpoints are disabled without it.
	TMDBAPIKey string
	// SpotifyClientID and SpotifyClientSecret drive the client-credentials
	// flow for music metadata enrichment. Optional.
	SpotifyClientID     string
	SpotifyClientSecret string

	// CacheTTL is how long per-year results stay fresh.
	CacheTTL time.Duration
}

// Load reads configuration from the environment, first merging in a .env
// file if one exists. Missing optional values fall back to defaults.
func Load() (*Config, error) {
	// A missing .env file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "INFO"),
		WikipediaBaseURL:    os.Getenv("WIKIPEDIA_BASE_URL"),
		UserAgent:           getEnv("USER_AGENT", "WikiCap/1.0 (https://github.com/Carlsmeister/wikicap)"),
		TMDBAPIKey:          os.Getenv("TMDB_API_KEY"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		CacheTTL:            12 * time.Hour,
	}

	if raw := os.Getenv("CACHE_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid CACHE_TTL_HOURS %q", raw)
		}
		cfg.CacheTTL = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
