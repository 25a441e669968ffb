package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, read from the environment.
// godotenv loads a .env file into the environment before Load is called.
type Config struct {
	Env  string
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	MarketDataProvider string
	AlphaVantageAPIKey string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Env:  getenv("APP_ENV", "development"),
		Port: getenv("PORT", "8080"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", ""),
		DBName:     getenv("DB_NAME", "foliotrack"),
		DBPort:     getenv("DB_PORT", "5432"),

		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		JWTSecret:       getenv("JWT_SECRET", ""),
		AccessTokenTTL:  getduration("ACCESS_TOKEN_EXPIRE", 15*time.Minute),
		RefreshTokenTTL: getduration("REFRESH_TOKEN_EXPIRE", 7*24*time.Hour),

		MarketDataProvider: getenv("MARKET_DATA_PROVIDER", "synthetic"),
		AlphaVantageAPIKey: getenv("ALPHA_VANTAGE_API_KEY", ""),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	// The refresh secret defaults to the access secret when not set separately.
	cfg.JWTRefreshSecret = getenv("JWT_REFRESH_SECRET", cfg.JWTSecret)

	return cfg
}

// Development reports whether the service runs in development mode, which
// controls how much internal error detail leaks to API callers.
func (c *Config) Development() bool { return c.Env == "development" }

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
