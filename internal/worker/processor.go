package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"document-ingest-service/internal/entity"
	"document-ingest-service/internal/repository/postgresql"
)

type JobRepo interface {
	GetForWorker(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	Advance(ctx context.Context, id uuid.UUID, next entity.JobStatus, result json.RawMessage, errorDetail *string) error
}

type ArtifactStore interface {
	Download(ctx context.Context, storageKey string) ([]byte, error)
}

// Extractor is the content-extraction seam. The profile id selects which
// schema applies; this package only moves the job through its lifecycle.
type Extractor interface {
	Extract(ctx context.Context, documentProfileID, mimeType string, data []byte) (json.RawMessage, error)
}

type Processor struct {
	repo      JobRepo
	store     ArtifactStore
	extractor Extractor
	logger    *slog.Logger
}

func NewProcessor(repo JobRepo, store ArtifactStore, extractor Extractor, logger *slog.Logger) *Processor {
	return &Processor{repo: repo, store: store, extractor: extractor, logger: logger}
}

// Process claims one job and drives it to a terminal state. The first step is
// the conditional pending -> processing edge: if another worker already took
// the job (or it is terminal), that update affects zero rows and this delivery
// is dropped, which makes at-least-once queue delivery safe.
func (p *Processor) Process(ctx context.Context, jobID string) error {
	start := time.Now()

	id, err := uuid.Parse(jobID)
	if err != nil {
		p.logger.Error("unparseable job id from queue", "job_id", jobID, "error", err)
		return err
	}

	if err := p.repo.Advance(ctx, id, entity.StatusProcessing, nil, nil); err != nil {
		if errors.Is(err, postgresql.ErrInvalidTransition) {
			p.logger.Debug("job already claimed or terminal, dropping delivery", "job_id", id)
			return nil
		}
		return err
	}

	job, err := p.repo.GetForWorker(ctx, id)
	if err != nil {
		return err
	}

	p.logger.Info("processing job", "job_id", id, "tenant_id", job.TenantID,
		"document_profile_id", job.DocumentProfileID)

	data, err := p.store.Download(ctx, job.Source.StorageKey)
	if err != nil {
		return p.fail(ctx, id, "ARTIFACT_UNAVAILABLE: "+err.Error())
	}

	result, err := p.extractor.Extract(ctx, job.DocumentProfileID, job.Source.MimeType, data)
	if err != nil {
		p.logger.Warn("extraction failed", "job_id", id, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return p.fail(ctx, id, "EXTRACTION_FAILED: "+err.Error())
	}

	if err := p.repo.Advance(ctx, id, entity.StatusCompleted, result, nil); err != nil {
		return err
	}

	p.logger.Info("job completed", "job_id", id, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (p *Processor) fail(ctx context.Context, id uuid.UUID, detail string) error {
	if err := p.repo.Advance(ctx, id, entity.StatusFailed, nil, &detail); err != nil {
		return err
	}
	return nil
}
