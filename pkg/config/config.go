package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// Upstream commerce API consumed by the engine.
	CommerceAPIURL string
	Currency       string

	// Credential persistence. RedisURL takes precedence when set,
	// otherwise the SQLite file at CredentialDBPath is used.
	CredentialDBPath string
	RedisURL         string

	AllowedOrigins []string
}

func Load() Config {
	// A missing .env file is fine, real env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:           getEnv("APP_ENV", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		CommerceAPIURL:   getEnv("COMMERCE_API_URL", "http://127.0.0.1:8000/api"),
		Currency:         getEnv("CURRENCY", "USD"),
		CredentialDBPath: getEnv("CREDENTIAL_DB_PATH", "storefront.db"),
		RedisURL:         getEnv("REDIS_URL", ""),
	}

	if origin := getEnv("ALLOWED_ORIGIN", ""); origin != "" {
		cfg.AllowedOrigins = []string{origin}
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
