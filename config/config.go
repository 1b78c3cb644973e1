package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	GinMode     string
	LogLevel    string
	FrontendURL string

	// Store
	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	SeedData      bool

	// Auth
	JWTSecret          string
	JWTExpiry          time.Duration
	SessionSecret      string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	AdminPromotion     string
	AdminEmails        []string

	// Chat assistant
	GeminiAPIKey string
	GeminiModel  string
	GeminiAPIURL string
	ChatTimeout  time.Duration

	// Rate limiting
	RedisAddress    string
	RedisPassword   string
	IssueRateLimit  int
	IssueRateWindow time.Duration
}

func Load() *Config {
	jwtSecret := getEnv("JWT_SECRET", "")
	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "civiclens"),
		SeedData:      parseBool(getEnv("SEED_DATA", "false")),

		JWTSecret:          jwtSecret,
		JWTExpiry:          parseDuration(getEnv("JWT_EXPIRY", "72h"), 72*time.Hour),
		SessionSecret:      getEnv("SESSION_SECRET", jwtSecret),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:8080/auth/google/callback"),
		AdminPromotion:     getEnv("ADMIN_PROMOTION", "allowlist"),
		AdminEmails:        splitList(getEnv("ADMIN_EMAILS", "")),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiAPIURL: getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ChatTimeout:  parseDuration(getEnv("CHAT_TIMEOUT", "20s"), 20*time.Second),

		RedisAddress:    getEnv("REDIS_ADDRESS", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		IssueRateLimit:  parseInt(getEnv("ISSUE_RATE_LIMIT", "20"), 20),
		IssueRateWindow: parseDuration(getEnv("ISSUE_RATE_WINDOW", "24h"), 24*time.Hour),
	}
}

// Validate reports settings the process cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI environment variable is required for the mongo store")
		}
	case "memory":
	default:
		return errors.New("STORE_DRIVER must be mongo or memory")
	}
	return nil
}

// GoogleEnabled is true when both OAuth client credentials are present.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
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
