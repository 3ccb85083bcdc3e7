package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // schedule timezone must resolve on minimal images

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Route pricing (OpenRouteService) configuration
	Pricing PricingConfig

	// Chat assistant configuration
	Assistant AssistantConfig

	// Redis configuration
	Redis RedisConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Ticket event publishing configuration
	Events EventsConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Bootstrap and scheduled maintenance configuration
	Bootstrap BootstrapConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	Timezone    string // IANA zone trips are scheduled in
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
	CookieSecure      bool
}

// PricingConfig holds OpenRouteService configuration
type PricingConfig struct {
	ORSAPIKey  string
	ORSBaseURL string
	Timeout    time.Duration
	CacheTTL   time.Duration
}

// AssistantConfig holds the text generation configuration
type AssistantConfig struct {
	GeminiAPIKey string
	Model        string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig holds token bucket configuration for the chatbot endpoint
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// EventsConfig holds AMQP configuration for ticket events
type EventsConfig struct {
	AMQPURL string
	Queue   string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
}

// BootstrapConfig holds startup and maintenance configuration
type BootstrapConfig struct {
	AdminEmail          string
	RunOnStart          bool
	CronEnabled         bool
	MaintenanceSchedule string // cron spec with seconds
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Timezone:    getEnv("APP_TIMEZONE", "Europe/Istanbul"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			// SECRET_KEY is the name the site used for its session secret
			Secret:            getEnv("JWT_SECRET", getEnv("SECRET_KEY", "")),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 86400)) * time.Second,
			CookieSecure:      getEnvAsBool("JWT_COOKIE_SECURE", false),
		},
		Pricing: PricingConfig{
			ORSAPIKey:  getEnv("ORS_API_KEY", ""),
			ORSBaseURL: getEnv("ORS_BASE_URL", "https://api.openrouteservice.org"),
			Timeout:    time.Duration(getEnvAsInt("ORS_TIMEOUT_SECONDS", 15)) * time.Second,
			CacheTTL:   time.Duration(getEnvAsInt("ROUTE_CACHE_TTL_HOURS", 168)) * time.Hour,
		},
		Assistant: AssistantConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Capacity:       getEnvAsInt("RATE_LIMIT_CAPACITY", 20),
			RefillTokens:   getEnvAsInt("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: time.Duration(getEnvAsInt("RATE_LIMIT_REFILL_SECONDS", 3)) * time.Second,
			TTL:            time.Duration(getEnvAsInt("RATE_LIMIT_TTL_SECONDS", 600)) * time.Second,
			Prefix:         getEnv("RATE_LIMIT_PREFIX", "rl"),
		},
		Events: EventsConfig{
			AMQPURL: getEnv("AMQP_URL", ""),
			Queue:   getEnv("TICKET_EVENTS_QUEUE", "ticket.events"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:          getEnv("ADMIN_EMAIL", ""),
			RunOnStart:          getEnvAsBool("BOOTSTRAP_ON_START", true),
			CronEnabled:         getEnvAsBool("CRON_ENABLED", true),
			MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 5 0 * * *"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET (or SECRET_KEY) is required")
	}

	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Server.Timezone, err)
	}

	if c.Pricing.Timeout <= 0 {
		return fmt.Errorf("ORS_TIMEOUT_SECONDS must be positive")
	}

	return nil
}

// Location returns the configured schedule timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
