package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"document-ingest-service/internal/auth"
	"document-ingest-service/internal/config"
	"document-ingest-service/internal/repository/postgresql"
	"document-ingest-service/internal/service"
	"document-ingest-service/internal/storage"
	httptransport "document-ingest-service/internal/transport/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	// Postgres
	pool, err := postgresql.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("pg: %v", err)
	}
	defer pool.Close()

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// S3
	store, err := storage.NewS3Adapter(ctx, storage.Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	}, logger)
	if err != nil {
		log.Fatalf("s3: %v", err)
	}

	// DI
	gate := auth.NewGate(auth.NewPostgresCredentialStore(pool))
	validator := service.NewFileValidator(cfg.AllowedMimes, cfg.MaxUploadBytes)
	repo := postgresql.NewJobRepository(pool)
	queue := service.NewRedisQueue(rdb, cfg.QueueKey, cfg.ProcessingKey)

	svc := service.NewIngestService(gate, validator, store, repo, queue, cfg.SignedURLTTL, logger)
	handler := httptransport.NewHandler(svc)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      httptransport.Routes(handler, logger),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server started", "addr", cfg.ListenAddr, "bucket", cfg.S3Bucket,
		"max_upload_bytes", cfg.MaxUploadBytes)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http: %v", err)
	}

	logger.Info("server stopped")
}
