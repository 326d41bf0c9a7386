// Package config builds runtime configuration from the environment so main
// stays lean. Nothing here is hard-coded into business logic; every knob the
// guards and the AI pipeline need is environment-supplied.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration for the server.
type Config struct {
	Addr    string
	BaseURL string

	// AllowedOrigins is the CORS allow-list. The service base URL is always
	// included; localhost entries cover development.
	AllowedOrigins []string

	DatabaseURL string
	Redis       RedisConfig
	Auth        AuthConfig
	Model       ModelConfig
	RateLimits  RateLimitConfig
	Audit       AuditConfig
}

// RedisConfig captures connection settings for the shared rate-bucket store.
// An empty URL means Redis is not configured and the in-process fallback is
// the only limiter backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig points at the opaque identity provider.
type AuthConfig struct {
	// ProviderURL is the base URL of the identity service.
	ProviderURL string
	// AnonKey is the provider's public API key sent with user lookups.
	AnonKey string
	// JWTSecret enables local HS256 validation of provider access tokens.
	// Empty means every resolution goes to the provider over HTTP.
	JWTSecret string
	// AccessCookie is the cookie the provider sets with the access token.
	AccessCookie string
	Timeout      time.Duration
}

// ModelConfig points at the external language model service.
type ModelConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// RateLimitConfig holds the three named policies.
type RateLimitConfig struct {
	// API: general endpoints, keyed by client IP.
	APILimit  int
	APIWindow time.Duration
	// AI: the model-query path, keyed by user ID. Tighter because every
	// call has real monetary cost against the external model.
	AILimit  int
	AIWindow time.Duration
	// Auth: login/signup attempts, keyed by IP, to blunt credential stuffing.
	AuthLimit  int
	AuthWindow time.Duration
}

// AuditConfig configures the optional Kafka audit sink.
type AuditConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv assembles the Config from environment variables, applying
// development defaults where a value is absent.
func FromEnv() Config {
	baseURL := envStr("BASE_URL", "http://localhost:8080")

	origins := []string{baseURL, "http://localhost:3000", "http://localhost:3001"}
	if extra := os.Getenv("ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		Addr:           envStr("ADDR", ":8080"),
		BaseURL:        baseURL,
		AllowedOrigins: origins,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			ProviderURL:  os.Getenv("AUTH_PROVIDER_URL"),
			AnonKey:      os.Getenv("AUTH_ANON_KEY"),
			JWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
			AccessCookie: envStr("AUTH_ACCESS_COOKIE", "sb-access-token"),
			Timeout:      envDuration("AUTH_TIMEOUT", 5*time.Second),
		},
		Model: ModelConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       envStr("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:     envStr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			MaxTokens:   envInt("OPENAI_MAX_TOKENS", 1000),
			Temperature: envFloat("OPENAI_TEMPERATURE", 0.7),
			Timeout:     envDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		RateLimits: RateLimitConfig{
			APILimit:   envInt("RATE_LIMIT_API", 10),
			APIWindow:  envDuration("RATE_LIMIT_API_WINDOW", 10*time.Second),
			AILimit:    envInt("RATE_LIMIT_AI", 5),
			AIWindow:   envDuration("RATE_LIMIT_AI_WINDOW", 30*time.Second),
			AuthLimit:  envInt("RATE_LIMIT_AUTH", 5),
			AuthWindow: envDuration("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
		},
		Audit: AuditConfig{
			Brokers: splitNonEmpty(os.Getenv("AUDIT_KAFKA_BROKERS")),
			Topic:   envStr("AUDIT_KAFKA_TOPIC", "inkpad.audit.security"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
