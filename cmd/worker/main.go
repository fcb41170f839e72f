package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"thumbai/internal/generate"
	"thumbai/internal/imagegen"
	"thumbai/internal/infra"
	"thumbai/internal/jobstore"
	"thumbai/internal/queue"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if !cfg.AsyncEnabled() {
		logger.Fatal().Msg("worker: DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	store := jobstore.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to prepare job store")
	}

	events := queue.NewPostgresQueue(pool, logger)
	if err := events.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to prepare queue")
	}
	events.InvocationTimeout = cfg.WorkerTimeout
	events.PollInterval = cfg.PollInterval

	// NOTIFY wake-ups shorten idle latency; claims still poll as a backstop.
	listener, err := queue.NewListener(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("worker: listen failed, relying on polling")
	} else {
		events.Wakeup = listener.Wakeup()
		defer listener.Close()
	}

	var provider imagegen.Generator
	if cfg.OpenAIAPIKey != "" {
		client, err := imagegen.NewOpenAIClient(imagegen.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIImageModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to configure image client")
		}
		provider = client
		logger.Info().Str("model", client.Model()).Msg("worker: image client ready")
	} else {
		logger.Warn().Msg("worker: OPENAI_API_KEY missing, jobs will fail with fallbacks")
	}

	worker := generate.NewWorker(store, provider, logger)

	logger.Info().Msg("worker: started")
	if err := events.Consume(ctx, worker.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
