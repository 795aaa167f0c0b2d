package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"document-ingest-service/internal/config"
	"document-ingest-service/internal/repository/postgresql"
	"document-ingest-service/internal/service"
	"document-ingest-service/internal/storage"
	"document-ingest-service/internal/worker"
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
	repo := postgresql.NewJobRepository(pool)
	queue := service.NewRedisQueue(rdb, cfg.QueueKey, cfg.ProcessingKey)

	// Reaper: moves jobs stuck in the processing list back to the queue
	// (worker crashed between claim and ack).
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := queue.RequeueStale(ctx, 100)
				if err != nil {
					logger.Error("requeue failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Info("requeued stale jobs", "count", n)
				}
			}
		}
	}()

	processor := worker.NewProcessor(repo, store, worker.StubExtractor{}, logger)
	workerPool := worker.NewPool(queue, processor, cfg.Workers, logger)

	logger.Info("worker started", "workers", cfg.Workers, "queue_key", cfg.QueueKey)
	workerPool.Run(ctx)

	logger.Info("worker stopped")
}
