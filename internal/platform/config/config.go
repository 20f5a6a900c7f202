package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration for the ledger service.
type Server struct {
	Addr          string
	Environment   string
	OwnerAddress  string
	TokenName     string
	TokenSymbol   string
	InitialSupply uint64
	JWTSigningKey string
	TokenTTL      time.Duration

	DatabaseURL string
	RedisURL    string

	KafkaBrokers string
	KafkaTopic   string

	// RatePerSecond caps mutating requests per caller; 0 disables limiting.
	RatePerSecond float64
	RateBurst     int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("TOKENGATE_ADDR", ":8080"),
		Environment:   envOr("TOKENGATE_ENV", "dev"),
		OwnerAddress:  os.Getenv("TOKENGATE_OWNER_ADDRESS"),
		TokenName:     envOr("TOKENGATE_TOKEN_NAME", "Gated Asset"),
		TokenSymbol:   envOr("TOKENGATE_TOKEN_SYMBOL", "GATE"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:      15 * time.Minute,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:    envOr("KAFKA_TOPIC", "tokengate.ledger.events"),
		RatePerSecond: 50,
		RateBurst:     100,
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenTTL = d
		}
	}
	if v := os.Getenv("TOKENGATE_INITIAL_SUPPLY"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.InitialSupply = n
		}
	}
	if v := os.Getenv("TOKENGATE_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RatePerSecond = f
		}
	}
	if v := os.Getenv("TOKENGATE_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateBurst = n
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// RedisConfig holds Redis connection tuning for the compliance flag cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns sensible defaults for the flag cache.
func DefaultRedisConfig(url string) RedisConfig {
	return RedisConfig{
		URL:          url,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}
