// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-key-change-me"

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	// CORSAllowOrigin is echoed in Access-Control-Allow-Origin. Empty means
	// same-origin only.
	CORSAllowOrigin string

	JWTSecretKey string
	TokenTTL     time.Duration

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	ChatModel         string
	CompletionTimeout time.Duration

	// StorageBackend is "sql" (gorm) or "document" (bbolt).
	StorageBackend    string
	DatabaseDriver    string
	DatabaseDSN       string
	DocumentStorePath string

	UserHistoryLimit  int
	GuestHistoryLimit int
	GuestSessionTTL   time.Duration
	MaxGuestSessions  int

	// KeywordRulesFile overrides the embedded keyword rules when set.
	KeywordRulesFile string

	ChatRatePerSecond float64
	ChatRateBurst     int

	MetricsEnabled bool
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", ""),

		JWTSecretKey: getEnv("JWT_SECRET_KEY", defaultSecret(env)),
		TokenTTL:     getEnvAsDuration("TOKEN_TTL", 24*time.Hour),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		ChatModel:         getEnv("CHAT_MODEL", "gpt-3.5-turbo"),
		CompletionTimeout: getEnvAsDuration("COMPLETION_TIMEOUT", 60*time.Second),

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", "sql")),
		DatabaseDriver:    strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseDSN:       getEnv("DATABASE_DSN", "wellness.db"),
		DocumentStorePath: getEnv("DOCUMENT_STORE_PATH", "wellness.bolt"),

		UserHistoryLimit:  getEnvAsInt("USER_HISTORY_LIMIT", 12),
		GuestHistoryLimit: getEnvAsInt("GUEST_HISTORY_LIMIT", 10),
		GuestSessionTTL:   getEnvAsDuration("GUEST_SESSION_TTL", 2*time.Hour),
		MaxGuestSessions:  getEnvAsInt("MAX_GUEST_SESSIONS", 10000),

		KeywordRulesFile: getEnv("KEYWORD_RULES_FILE", ""),

		ChatRatePerSecond: getEnvAsFloat("CHAT_RATE_PER_SECOND", 1),
		ChatRateBurst:     getEnvAsInt("CHAT_RATE_BURST", 5),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}
}

// Validate reports every problem at once so a misconfigured deploy fails fast.
func (c *Config) Validate() error {
	var problems []string
	if isProduction(c.Environment) {
		if c.JWTSecretKey == "" {
			problems = append(problems, "JWT_SECRET_KEY is required")
		}
		if c.OpenAIAPIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required")
		}
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	switch c.StorageBackend {
	case "sql", "document":
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_BACKEND must be sql or document, got %q", c.StorageBackend))
	}
	if c.UserHistoryLimit <= 0 {
		problems = append(problems, "USER_HISTORY_LIMIT must be positive")
	}
	if c.GuestHistoryLimit <= 0 || c.GuestHistoryLimit > c.UserHistoryLimit {
		problems = append(problems, "GUEST_HISTORY_LIMIT must be positive and not above USER_HISTORY_LIMIT")
	}
	if c.MaxGuestSessions <= 0 {
		problems = append(problems, "MAX_GUEST_SESSIONS must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

func defaultSecret(env string) string {
	if isProduction(env) {
		return ""
	}
	return devJWTSecret
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as number. Using default value.", key)
		return defaultValue
	}
	return v
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}
