// Package config reads service settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort       = "8080"
	defaultRedisAddr  = "127.0.0.1:6379"
	defaultLLMTimeout = 30 * time.Second
	defaultKeyPrefix  = "gigmarket-ai"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// StoreBackend selects cache and usage storage: memory, redis or sql.
	StoreBackend string
	RedisAddr    string
	DatabaseDSN  string
	KeyPrefix    string

	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	JWTSecret  string
	QuotasFile string
}

// Load reads .env from the working directory when present, then the
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:         get("PORT", defaultPort),
		Env:          get("ENV", "production"),
		LogLevel:     get("LOG_LEVEL", ""),
		StoreBackend: strings.ToLower(get("STORE_BACKEND", "memory")),
		RedisAddr:    get("REDIS_ADDR", defaultRedisAddr),
		DatabaseDSN:  get("DATABASE_DSN", ""),
		KeyPrefix:    get("KEY_PREFIX", defaultKeyPrefix),
		LLMBaseURL:   get("LLM_BASE_URL", ""),
		LLMModel:     get("LLM_MODEL", ""),
		LLMTimeout:   defaultLLMTimeout,
		JWTSecret:    get("JWT_SECRET", ""),
		QuotasFile:   get("QUOTAS_FILE", ""),
	}

	if raw := get("LLM_TIMEOUT", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("LLM_TIMEOUT: invalid duration %q", raw)
		}
		cfg.LLMTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case "memory", "redis":
	case "sql":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("STORE_BACKEND=sql requires DATABASE_DSN")
		}
	default:
		return fmt.Errorf("STORE_BACKEND: unknown backend %q", c.StoreBackend)
	}
	return nil
}

// LLMCredential reads LLM_API_KEY at call time, so the key is only
// required once a feature is actually used.
func LLMCredential() string {
	return strings.TrimSpace(os.Getenv("LLM_API_KEY"))
}
