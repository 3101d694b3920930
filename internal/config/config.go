// Package config holds the process configuration, populated by kong from
// CLI flags, environment variables and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"time"
)

// Config is the kong-parsed configuration for the weatherdeck server.
type Config struct {
	DB   string `name:"db" default:"data/weatherdeck.db" help:"Path to the SQLite database."`
	Addr string `name:"addr" default:":8080" env:"HTTP_ADDR" help:"HTTP listen address."`

	APIKey  string `name:"api-key" env:"WEATHER_API_KEY" required:"" help:"Weather provider access key."`
	BaseURL string `name:"base-url" env:"WEATHER_API_URL" default:"https://api.weatherstack.com" help:"Weather provider base URL."`

	RefreshInterval time.Duration `name:"refresh-interval" env:"REFRESH_INTERVAL" default:"15m" help:"How often tracked cities are re-fetched to keep the cache warm."`
	NoRefresh       bool          `name:"no-refresh" help:"Disable the background refresher (server only, for local dev)."`

	LogLevel string `name:"log-level" env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level."`
	Dev      bool   `name:"dev" env:"DEV" help:"Use the human-readable log handler."`
}

// Level translates the configured log level into a slog.Level.
func (c Config) Level() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
}
