// Package config содержит логику чтения конфигурации сервиса учёта выплат.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mmeshcher/farm-payroll/internal/payroll"
)

// Config содержит параметры конфигурации сервиса учёта выплат.
type Config struct {
	RunAddress         string `env:"RUN_ADDRESS"`
	DatabaseURI        string `env:"DATABASE_URI"`
	JWTSecret          string `env:"JWT_SECRET"`
	IdentityURL        string `env:"IDENTITY_URL"`
	IdentityServiceKey string `env:"IDENTITY_SERVICE_KEY"`
	RedisAddr          string `env:"REDIS_ADDR"`

	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	RoundingMode  string        `env:"ROUNDING_MODE" envDefault:"half_up"`
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envJWTSecret := cfg.JWTSecret
	envIdentityURL := cfg.IdentityURL
	envRedisAddr := cfg.RedisAddr

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.JWTSecret, "s", "", "secret for verifying session tokens")
	flag.StringVar(&cfg.IdentityURL, "i", "", "identity provider admin API address")
	flag.StringVar(&cfg.RedisAddr, "r", "", "redis address for list cache")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envJWTSecret != "" {
		cfg.JWTSecret = envJWTSecret
	}
	if envIdentityURL != "" {
		cfg.IdentityURL = envIdentityURL
	}
	if envRedisAddr != "" {
		cfg.RedisAddr = envRedisAddr
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if cfg.DatabaseURI == "" {
		return nil, errors.New("database URI is required: set DATABASE_URI or -d")
	}

	if _, err := payroll.ParseRoundingMode(cfg.RoundingMode); err != nil {
		return nil, fmt.Errorf("parse ROUNDING_MODE: %w", err)
	}

	return cfg, nil
}

// Rounding возвращает режим округления денежных сумм.
func (c *Config) Rounding() payroll.RoundingMode {
	mode, err := payroll.ParseRoundingMode(c.RoundingMode)
	if err != nil {
		return payroll.RoundHalfUp
	}
	return mode
}
