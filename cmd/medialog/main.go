package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/medialoghq/medialog/internal/activity"
	"github.com/medialoghq/medialog/internal/config"
	"github.com/medialoghq/medialog/internal/fetch"
	"github.com/medialoghq/medialog/internal/server"
	"github.com/medialoghq/medialog/internal/unfurl"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setLogLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	fetcher := fetch.New(fetch.Options{
		RPS:          cfg.WebFetchRPS,
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	engine := unfurl.New(fetcher, unfurl.Options{
		OEmbedTimeout: cfg.OEmbedTimeout,
		PageTimeout:   cfg.FetchTimeout,
	}, &logger)

	relay := activity.NewRelay(cfg.ActivityEndpoint, cfg.ActivityToken, cfg.ActivityTimeout, &logger)

	srv := server.New(engine, relay, cfg.ListenPort, &logger)

	logger.Info().Str("env", cfg.AppEnv).Msg("Starting medialog")

	if err := srv.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server error")
	}

	logger.Info().Msg("medialog stopped")
}

// setLogLevel sets the global log level based on the configuration.
func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
