package worker

import (
	"context"
	"log/slog"
	"time"

	"document-ingest-service/internal/service"
)

type Pool struct {
	queue      service.Queue
	processor  *Processor
	workers    int
	claimDelay time.Duration
	logger     *slog.Logger
}

func NewPool(queue service.Queue, processor *Processor, workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{
		queue:      queue,
		processor:  processor,
		workers:    workers,
		claimDelay: 5 * time.Second,
		logger:     logger,
	}
}

func (p *Pool) Run(ctx context.Context) {
	p.logger.Info("worker pool started", "workers", p.workers)

	jobCh := make(chan string)

	for i := 0; i < p.workers; i++ {
		go func(n int) {
			for jobID := range jobCh {
				if err := p.processor.Process(ctx, jobID); err != nil {
					p.logger.Error("process failed", "worker", n, "job_id", jobID, "error", err)
				}

				// Ack regardless: the job is already terminal in the DB, or
				// Process failed before any transition and the reaper will
				// requeue the id.
				if err := p.queue.Ack(ctx, jobID); err != nil {
					p.logger.Error("ack failed", "worker", n, "job_id", jobID, "error", err)
				}
			}
		}(i + 1)
	}

	for {
		select {
		case <-ctx.Done():
			close(jobCh)
			p.logger.Info("worker pool stopped")
			return
		default:
			jobID, err := p.queue.ClaimBlocking(ctx, p.claimDelay)
			if err != nil {
				// timeout / redis.Nil / ctx cancel
				continue
			}
			select {
			case jobCh <- jobID:
			case <-ctx.Done():
				close(jobCh)
				return
			}
		}
	}
}
