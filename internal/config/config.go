// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Exchange ExchangeConfig
	SMTP     SMTPConfig

	// DefaultCurrency is the ISO code used as the reference currency for
	// netting runs and as the fallback priority currency.
	DefaultCurrency string

	// ReminderInterval is how often the reminder job scans for due debts.
	ReminderInterval time.Duration
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig points at the SQLite database file.
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds the token signing secret and lifetimes.
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
}

// ExchangeConfig describes the currency conversion provider.
type ExchangeConfig struct {
	Host   string
	APIKey string
}

// SMTPConfig describes the outgoing mail server. An empty Host disables
// real delivery; mails are logged instead.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultDatabasePath    = "data/debtnet.db"
	defaultTokenDuration   = 24 * time.Hour
	defaultExchangeHost    = "https://v6.exchangerate-api.com/v6"
	defaultSMTPPort        = 587
	defaultCurrency        = "USD"
	defaultReminderTick    = 24 * time.Hour
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Path: valueOrDefault("DATABASE_PATH", defaultDatabasePath),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenDuration: defaultTokenDuration,
		},
		Exchange: ExchangeConfig{
			Host:   valueOrDefault("EXCHANGE_HOST", defaultExchangeHost),
			APIKey: os.Getenv("EXCHANGE_API_KEY"),
		},
		DefaultCurrency:  valueOrDefault("DEFAULT_CURRENCY", defaultCurrency),
		ReminderInterval: defaultReminderTick,
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     parseIntWithDefault("SMTP_PORT", defaultSMTPPort),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	if v := os.Getenv("TOKEN_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOKEN_DURATION: %w", err)
		}
		cfg.Auth.TokenDuration = d
	}

	if v := os.Getenv("REMINDER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REMINDER_INTERVAL: %w", err)
		}
		cfg.ReminderInterval = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.HTTP.ShutdownTimeout = d
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
