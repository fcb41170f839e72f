package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"thumbai/internal/domain"
	"thumbai/internal/infra"
	"thumbai/internal/poller"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	baseURL := flag.String("base-url", "http://localhost:"+cfg.Port, "API base URL")
	flag.Parse()

	jobID := flag.Arg(0)
	if jobID == "" {
		logger.Fatal().Msg("poll: usage: poll [-base-url URL] <job-id>")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := poller.New(poller.NewClient(*baseURL, nil), cfg.PollInterval, cfg.PollTimeout)
	rec, err := p.Wait(ctx, jobID)
	if err != nil {
		logger.Fatal().Err(err).Str("state", string(p.State())).Str("job_id", jobID).Msg("poll: wait failed")
	}

	logger.Info().Str("job_id", jobID).Str("status", string(rec.Status)).Msg("poll: job resolved")
	for _, thumb := range rec.Data.Thumbnails {
		fmt.Println(thumb)
	}
	if rec.Status == domain.JobStatusFailed {
		logger.Error().Str("error", rec.Data.Error).Msg("poll: generation failed")
		os.Exit(1)
	}
}
