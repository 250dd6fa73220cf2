package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	OllamaURL string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	ModelName string `env:"MODEL_NAME" envDefault:"llama3.2:3b"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// ContentRating enables the scene prose filter when set to
	// "family". Empty leaves generated text untouched.
	ContentRating string `env:"CONTENT_RATING" envDefault:""`

	// AutoSave persists the game state after every successful turn.
	AutoSave bool `env:"AUTO_SAVE" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
