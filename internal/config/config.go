package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass        string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	IncidentCacheTTL time.Duration `env:"INCIDENT_CACHE_TTL" envDefault:"5m"`

	// Change feed Config
	FeedReconnectBaseDelay time.Duration `env:"FEED_RECONNECT_BASE_DELAY" envDefault:"1s"`
	FeedReconnectMaxDelay  time.Duration `env:"FEED_RECONNECT_MAX_DELAY" envDefault:"30s"`

	// Dispatch Config
	GeoProviderURL       string        `env:"GEO_PROVIDER_URL"`
	GeoTimeout           time.Duration `env:"GEO_TIMEOUT" envDefault:"10s"`
	FallbackLatitude     float64       `env:"FALLBACK_LATITUDE" envDefault:"17.5945"`
	FallbackLongitude    float64       `env:"FALLBACK_LONGITUDE" envDefault:"78.4403"`
	DispatchWriteTimeout time.Duration `env:"DISPATCH_WRITE_TIMEOUT" envDefault:"15s"`
	SentDisplayInterval  time.Duration `env:"SENT_DISPLAY_INTERVAL" envDefault:"3s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		IncidentCacheTTL:       getEnvAsPositiveDuration("INCIDENT_CACHE_TTL", 5*time.Minute),
		FeedReconnectBaseDelay: getEnvAsPositiveDuration("FEED_RECONNECT_BASE_DELAY", time.Second),
		FeedReconnectMaxDelay:  getEnvAsPositiveDuration("FEED_RECONNECT_MAX_DELAY", 30*time.Second),
		GeoProviderURL:         os.Getenv("GEO_PROVIDER_URL"),
		GeoTimeout:             getEnvAsPositiveDuration("GEO_TIMEOUT", 10*time.Second),
		FallbackLatitude:       getEnvAsFloat("FALLBACK_LATITUDE", 17.5945),
		FallbackLongitude:      getEnvAsFloat("FALLBACK_LONGITUDE", 78.4403),
		DispatchWriteTimeout:   getEnvAsPositiveDuration("DISPATCH_WRITE_TIMEOUT", 15*time.Second),
		SentDisplayInterval:    getEnvAsPositiveDuration("SENT_DISPLAY_INTERVAL", 3*time.Second),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.FeedReconnectMaxDelay < cfg.FeedReconnectBaseDelay {
		cfg.FeedReconnectMaxDelay = cfg.FeedReconnectBaseDelay
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsPositiveDuration как getEnvAsDuration, но нулевое или отрицательное значение заменяется значением по умолчанию
func getEnvAsPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if d := getEnvAsDuration(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
