package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"thumbai/internal/enhance"
	"thumbai/internal/generate"
	"thumbai/internal/http/handlers"
	"thumbai/internal/http/httpapi"
	"thumbai/internal/imagegen"
	"thumbai/internal/infra"
	"thumbai/internal/infra/geoip"
	"thumbai/internal/jobstore"
	"thumbai/internal/middleware"
	"thumbai/internal/queue"
	"thumbai/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	var provider imagegen.Generator
	if cfg.OpenAIAPIKey != "" {
		client, err := imagegen.NewOpenAIClient(imagegen.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIImageModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("api: failed to configure image client")
		}
		provider = client
	} else {
		logger.Warn().Msg("api: OPENAI_API_KEY missing, generation will degrade to fallbacks")
	}

	// The async backend is optional: without a database the dispatcher runs
	// every submission synchronously.
	var store jobstore.Store
	var publisher queue.Publisher
	if cfg.AsyncEnabled() {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: failed to connect database")
		}
		defer pool.Close()

		pgStore := jobstore.NewPostgresStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("api: failed to prepare job store")
		}
		pgQueue := queue.NewPostgresQueue(pool, logger)
		if err := pgQueue.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("api: failed to prepare queue")
		}
		store = pgStore
		publisher = pgQueue
	} else {
		logger.Warn().Msg("api: DATABASE_URL missing, running in synchronous-only mode")
	}

	uploads, err := storage.NewFileStore(cfg.StoragePath, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure upload storage")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip database unavailable")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	enhancer := enhance.NewOpenAIEnhancer(enhance.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIChatModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("api: enhance fell back to static")
		},
	})

	dispatcher := generate.NewDispatcher(generate.DispatcherOptions{
		Store:       store,
		Queue:       publisher,
		Provider:    provider,
		Logger:      logger,
		SyncTimeout: cfg.SyncGenerateTimeout,
		TTL:         cfg.JobTTL,
	})

	app := &handlers.App{
		Dispatcher:     dispatcher,
		Store:          store,
		Enhancer:       enhancer,
		Uploads:        uploads,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   "en",
		CountryLookup:   lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
