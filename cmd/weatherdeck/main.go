package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/weatherdeck/weatherdeck/internal/api"
	"github.com/weatherdeck/weatherdeck/internal/config"
	"github.com/weatherdeck/weatherdeck/internal/location"
	"github.com/weatherdeck/weatherdeck/internal/logging"
	"github.com/weatherdeck/weatherdeck/internal/refresh"
	"github.com/weatherdeck/weatherdeck/internal/state"
	"github.com/weatherdeck/weatherdeck/internal/storage"
	"github.com/weatherdeck/weatherdeck/internal/weatherstack"
)

func main() {
	var cfg config.Config
	kctx := kong.Parse(&cfg,
		kong.Name("weatherdeck"),
		kong.Description("Weather dashboard server with cached lookups, notes and geolocation."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	level, err := cfg.Level()
	kctx.FatalIfErrorf(err)
	logger := logging.New(level, cfg.Dev)

	kv, err := storage.Open(cfg.DB)
	if err != nil {
		logger.Error("open storage", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := state.New(kv, logger)
	if err := st.Load(ctx); err != nil {
		logger.Error("load state", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	weather := weatherstack.NewClient(cfg.BaseURL, kv, st, logger)
	defer weather.Close()

	bridge := api.NewGeoBridge()
	coordinator := location.New(bridge, bridge, weather, bridge, st, kv, cfg.APIKey, logger)
	go coordinator.Run(ctx)

	if !cfg.NoRefresh {
		refresher := refresh.New(st, weather, cfg.APIKey, cfg.RefreshInterval, logger)
		if err := refresher.Start(); err != nil {
			logger.Error("start refresher", "error", err)
			os.Exit(1)
		}
		defer refresher.Stop()
	} else {
		logger.Info("background refresh disabled")
	}

	server := api.NewServer(st, weather, bridge, cfg.APIKey, cfg.Addr, logger)
	if err := server.Run(ctx); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
}
