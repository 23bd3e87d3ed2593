package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	"media-migrator/internal/config"
	"media-migrator/internal/database"
	"media-migrator/internal/migrate"
	"media-migrator/internal/report"
	"media-migrator/internal/storage"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

func createStore(cfg *config.Config) (storage.Store, error) {
	if cfg.ImageBucket != "" {
		return storage.NewS3Store(storage.S3Config{
			EndpointURL:     cfg.S3EndpointURL,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.ImageBucket,
		})
	}
	return storage.NewLocalStore(cfg.ImageDownloadPath)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(logFile, os.Stderr), nil)).
		With("run_id", uuid.NewString())
	logger.Info("starting process")

	store, err := createStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create image store: %v", err)
	}

	db, err := database.Connect(cfg.SourceDSN())
	if err != nil {
		log.Fatalf("Failed to connect to source database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database connection", "error", err)
		}
	}()

	ctx := context.Background()

	source := database.NewSource(db, "mdl04.", logger)
	records, err := source.PendingMediaRecords(ctx, cfg.MediaResourceID, cfg.BatchLimit)
	if err != nil {
		log.Fatalf("Failed to fetch records: %v", err)
	}

	client := resty.New()
	fetcher := migrate.NewFetcher(client, store, logger)
	uploader := migrate.NewUploader(client, store, migrate.UploaderParams{
		UploadURL:   cfg.UploadURL,
		APIKey:      cfg.APIKey,
		MaxAttempts: cfg.MaxUploadAttempts,
		Timeout:     cfg.UploadTimeout,
	}, logger)

	coordinator := migrate.NewCoordinator(fetcher, uploader, cfg.WorkerConcurrency, logger)
	coordinator.ShowProgress = true

	results := coordinator.Run(ctx, records)

	succeeded := 0
	for _, result := range results {
		if result.Outcome.Success {
			succeeded++
		}
	}

	sink := report.NewExcelSink(cfg.ReportPath, logger)
	if err := sink.Write(results); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	logger.Info("process completed",
		"total", len(results), "succeeded", succeeded, "failed", len(results)-succeeded,
		"report", cfg.ReportPath)
}
