// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/dshills/carverdict/internal/signals"
)

// Config holds the settings shared by the CLI and the HTTP server.
type Config struct {
	LogLevel   string
	LogFormat  string
	ListenAddr string
	Profile    string

	SignalsURL     string
	SignalsAPIKey  string
	Fixtures       string
	RequestsPerSec int
	MaxRetry       time.Duration
	Timeouts       signals.Timeouts
}

// Load reads .env if present and then the CARVERDICT_* variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	def := signals.DefaultTimeouts()
	return &Config{
		LogLevel:   getEnvWithDefault("CARVERDICT_LOG_LEVEL", "info"),
		LogFormat:  getEnvWithDefault("CARVERDICT_LOG_FORMAT", "text"),
		ListenAddr: getEnvWithDefault("CARVERDICT_LISTEN_ADDR", ":8080"),
		Profile:    getEnvWithDefault("CARVERDICT_PROFILE", "standard"),

		SignalsURL:     os.Getenv("CARVERDICT_SIGNALS_URL"),
		SignalsAPIKey:  os.Getenv("CARVERDICT_SIGNALS_API_KEY"),
		Fixtures:       os.Getenv("CARVERDICT_FIXTURES"),
		RequestsPerSec: getEnvIntWithDefault("CARVERDICT_REQUESTS_PER_SEC", 5),
		MaxRetry:       getEnvSecondsWithDefault("CARVERDICT_MAX_RETRY_SECONDS", 10*time.Second),
		Timeouts: signals.Timeouts{
			History:  getEnvSecondsWithDefault("CARVERDICT_HISTORY_TIMEOUT_SECONDS", def.History),
			Market:   getEnvSecondsWithDefault("CARVERDICT_MARKET_TIMEOUT_SECONDS", def.Market),
			Disaster: getEnvSecondsWithDefault("CARVERDICT_DISASTER_TIMEOUT_SECONDS", def.Disaster),
			Recalls:  getEnvSecondsWithDefault("CARVERDICT_RECALLS_TIMEOUT_SECONDS", def.Recalls),
			Seller:   getEnvSecondsWithDefault("CARVERDICT_SELLER_TIMEOUT_SECONDS", def.Seller),
		},
	}
}

// ResolveOptions maps the collaborator settings onto signals.ResolveOptions.
func (c *Config) ResolveOptions() signals.ResolveOptions {
	return signals.ResolveOptions{
		BaseURL:        c.SignalsURL,
		APIKey:         c.SignalsAPIKey,
		FixturesPath:   c.Fixtures,
		RequestsPerSec: c.RequestsPerSec,
		MaxRetryTime:   c.MaxRetry,
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer, using default")
	}
	return defaultValue
}

func getEnvSecondsWithDefault(key string, defaultValue time.Duration) time.Duration {
	secs := getEnvIntWithDefault(key, -1)
	if secs <= 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}
