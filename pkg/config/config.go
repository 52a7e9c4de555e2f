package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration for the backend.
type Config struct {
	Port            string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// CORSOrigin is the comma-separated list of allowed origins.
	// "*" allows all origins.
	CORSOrigin string

	RateLimitRPS   float64
	RateLimitBurst int

	LatestPostsLimit      int
	SearchRebuildInterval time.Duration
}

const (
	defaultPort            = "5000"
	defaultMongoURI        = "mongodb://localhost:27017"
	defaultMongoDatabase   = "wanderlust"
	defaultMongoCollection = "posts"
	defaultCORSOrigin      = "http://localhost:5173"
	defaultRateLimitRPS    = 25
	defaultRateLimitBurst  = 50
	defaultLatestLimit     = 5
	defaultRebuildInterval = 5 * time.Minute
)

// Load builds a Config from environment variables with sane defaults.
// An optional .env file is loaded first when the path is non-empty; a
// missing file is not an error so containers can rely on real env vars.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{
		Port:                  getenvDefault("PORT", defaultPort),
		MongoURI:              getenvDefault("MONGODB_URI", defaultMongoURI),
		MongoDatabase:         getenvDefault("MONGODB_DB", defaultMongoDatabase),
		MongoCollection:       getenvDefault("MONGODB_COLLECTION", defaultMongoCollection),
		CORSOrigin:            getenvDefault("CORS_ORIGIN", defaultCORSOrigin),
		RateLimitRPS:          parseFloatDefault("RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst:        parseIntDefault("RATE_LIMIT_BURST", defaultRateLimitBurst),
		LatestPostsLimit:      parseIntDefault("LATEST_POSTS_LIMIT", defaultLatestLimit),
		SearchRebuildInterval: parseDurationDefault("SEARCH_REBUILD_INTERVAL", defaultRebuildInterval),
	}

	if cfg.RateLimitRPS < 0 {
		cfg.RateLimitRPS = 0
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}
	if cfg.LatestPostsLimit <= 0 {
		cfg.LatestPostsLimit = defaultLatestLimit
	}
	if cfg.SearchRebuildInterval <= 0 {
		cfg.SearchRebuildInterval = defaultRebuildInterval
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseIntDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseFloatDefault(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func parseDurationDefault(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
