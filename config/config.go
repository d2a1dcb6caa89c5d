package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	DBUrl    string

	JWTSecret          string
	AllowedOrigin      string
	FrontendURL        string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration

	// Payment Gateway
	GatewayBaseURL     string
	GatewayKeyID       string
	GatewayKeySecret   string
	GatewayCurrency    string
	GatewayHTTPTimeout time.Duration

	// SMTP
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Cache
	CacheProductTTL time.Duration

	// Business Rules
	FreeDeliveryThreshold float64
	DeliveryCharge        float64
	ReturnWindowDays      int
	MaxCartQuantity       int
}

func LoadConfig() *Config {
	// A specific config file may be requested via env var; otherwise fall
	// back to .env for local dev. Pure container/prod envs rely on system
	// env vars, so a missing file is not fatal.
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBUrl:    getEnv("DB_DSN", ""),

		JWTSecret:          getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		AccessTokenExpiry:  getDurationEnv("ACCESS_TOKEN_EXPIRY", time.Hour*24),
		RefreshTokenExpiry: getDurationEnv("REFRESH_TOKEN_EXPIRY", time.Hour*24*7),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 50),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 10),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		GatewayBaseURL:     getEnv("GATEWAY_BASE_URL", "https://api.gateway.example.com/v1"),
		GatewayKeyID:       getEnv("GATEWAY_KEY_ID", ""),
		GatewayKeySecret:   getEnv("GATEWAY_KEY_SECRET", ""),
		GatewayCurrency:    getEnv("GATEWAY_CURRENCY", "INR"),
		GatewayHTTPTimeout: getDurationEnv("GATEWAY_HTTP_TIMEOUT", 10*time.Second),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		SMTPFrom: getEnv("SMTP_FROM", "no-reply@zelora.example.com"),

		CacheProductTTL: getDurationEnv("CACHE_PRODUCT_TTL", 10*time.Minute),

		// Delivery is free from the threshold upward (inclusive).
		FreeDeliveryThreshold: getFloatEnv("FREE_DELIVERY_THRESHOLD", 199),
		DeliveryCharge:        getFloatEnv("DELIVERY_CHARGE", 49),
		ReturnWindowDays:      getIntEnv("RETURN_WINDOW_DAYS", 7),
		MaxCartQuantity:       getIntEnv("MAX_CART_QUANTITY", 100),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.GatewayKeySecret == "" {
		log.Println("WARNING: GATEWAY_KEY_SECRET is empty; online payments cannot be verified.")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
