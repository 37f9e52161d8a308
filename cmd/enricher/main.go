package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openhouse.systems/reeldesk/internal/application"
	"openhouse.systems/reeldesk/internal/config"
	"openhouse.systems/reeldesk/internal/db"
	"openhouse.systems/reeldesk/internal/enrich"
	"openhouse.systems/reeldesk/internal/media"
	"openhouse.systems/reeldesk/internal/pipeline"
	"openhouse.systems/reeldesk/internal/storage"
	"openhouse.systems/reeldesk/internal/transcribe"
	"openhouse.systems/reeldesk/pkg/ytdlp"
)

func main() {
	limit := flag.Int("limit", 500, "maximum number of reels to process in one run")
	delayMs := flag.Int("delay", 30000, "pause between reels in milliseconds")
	skipMedia := flag.Bool("skip-media", false, "skip download/normalize/upload, enrich existing reels instead")
	skipAI := flag.Bool("skip-ai", false, "skip transcription-backed enrichment")
	dryRun := flag.Bool("dry-run", false, "compute everything but write nothing to the database")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting enricher service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	pool, err := application.OpenDBPoolWithRetry(ctx, *conf)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	dbc, err := db.NewDatabaseConnection(ctx, pool)
	if err != nil {
		slog.Error("failed to create database connection", "error", err)
		os.Exit(1)
	}
	defer dbc.Close()

	acquirer := ytdlp.New()
	acquirer.Path = conf.YtdlpPath
	acquirer.CookiesFromBrowser = conf.CookiesBrowser

	versionCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if v, err := acquirer.Version(versionCtx); err != nil {
		slog.Warn("failed to query yt-dlp version", "error", err)
	} else {
		slog.Info("yt-dlp available", "version", v)
	}
	cancel()

	p := &pipeline.Pipeline{
		Store:       dbc,
		Acquirer:    acquirer,
		Media:       media.NewProcessor(),
		Transcriber: transcribe.NewClient(conf.OpenAIAPIKey, conf.OpenAITranscribeModel),
		Enricher:    enrich.NewEngine(conf.OpenAIAPIKey, conf.OpenAIChatModel),
		Uploader:    storage.NewUploader(conf.StorageURL, conf.StorageKey, conf.StorageBucket),
	}

	stats, err := p.Run(ctx, pipeline.Options{
		Limit:     *limit,
		Delay:     time.Duration(*delayMs) * time.Millisecond,
		SkipMedia: *skipMedia,
		SkipAI:    *skipAI,
		DryRun:    *dryRun,
	})
	if err != nil {
		slog.Error("enricher run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Enricher run finished",
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"skipped", stats.Skipped)
}
