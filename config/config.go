package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the storefront gateway reads from the environment.
type Config struct {
	Port          string
	BackendAPIURL string
	JWTSecret     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	KafkaBroker string
	KafkaTopic  string

	UpstreamTimeout time.Duration
	ProductCacheTTL time.Duration
}

// Load reads the environment, optionally seeded from a .env file.
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8084"),
		BackendAPIURL:   getEnv("BACKEND_API_URL", "http://localhost:5000/api"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBroker:     getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "checkout_events"),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
	}
}

// ServerOrigin is where the backend serves static files (product images,
// payment proofs). The API URL carries an /api suffix that static paths lack.
func (c *Config) ServerOrigin() string {
	origin := strings.TrimRight(c.BackendAPIURL, "/")
	origin = strings.TrimSuffix(origin, "/api")
	return origin
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
