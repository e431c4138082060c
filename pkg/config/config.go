package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks bad command line input or missing local files.
// It is fatal and is raised before any network activity.
var ErrConfiguration = errors.New("configuration error")

// DefaultBaseURL is the site whose profile pages are scraped.
const DefaultBaseURL = "http://www.furaffinity.net"

// Config holds all configuration for the application
type Config struct {
	BaseURL         string        `env:"FASTATS_BASE_URL"`
	UserAgent       string        `env:"USER_AGENT"`
	ScrapeTimeout   time.Duration `env:"SCRAPE_TIMEOUT"`
	RequestInterval time.Duration `env:"FASTATS_REQUEST_INTERVAL"`
	LogLevel        string        `env:"LOG_LEVEL"`

	// Stats API
	Port     string        `env:"PORT"`
	CacheTTL time.Duration `env:"CACHE_TTL"`

	// Rate limiting
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE"`
	ScrapeRateLimit    int `env:"SCRAPE_RATE_LIMIT"`

	// Security
	TrustedProxies string `env:"TRUSTED_PROXIES"`
}

// Load creates a new Config with values from environment variables or defaults.
// A .env file in the working directory is read first when present; variables
// already set in the environment win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BaseURL:         getEnv("FASTATS_BASE_URL", DefaultBaseURL),
		UserAgent:       getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
		ScrapeTimeout:   getDurationEnv("SCRAPE_TIMEOUT", 30*time.Second),
		RequestInterval: getDurationEnv("FASTATS_REQUEST_INTERVAL", 0),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		Port:     getEnv("PORT", "8080"),
		CacheTTL: getDurationEnv("CACHE_TTL", 1*time.Hour),

		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 60),
		ScrapeRateLimit:    getIntEnv("SCRAPE_RATE_LIMIT", 10),

		TrustedProxies: getEnv("TRUSTED_PROXIES", "127.0.0.1,::1"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration from environment variable or returns default
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer from environment variable or returns default
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
