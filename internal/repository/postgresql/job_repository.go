package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"document-ingest-service/internal/entity"
)

// ErrNotFound is the only absence signal this package exposes. It covers both
// a job id that does not exist and one owned by another tenant, so a caller
// cannot tell the two apart by error shape.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when the requested status edge is not in
// the forward-only lifecycle, or when the conditional update lost a race
// (the job was no longer in the expected predecessor state).
var ErrInvalidTransition = errors.New("invalid status transition")

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, tenant_id, document_profile_id, facility_id, status,
mime_type, size_bytes, storage_key, result, error_detail, created_at, updated_at`

// CreateJobParams carries everything write-once about a job. The id is
// allocated by the caller before the artifact goes to storage, so the storage
// key and the row always agree.
type CreateJobParams struct {
	ID                uuid.UUID
	TenantID          string
	DocumentProfileID string
	FacilityID        *string
	Source            entity.Source
}

// Create persists a new job in pending state. tenant_id and source are
// write-once from this point on.
func (r *JobRepository) Create(ctx context.Context, p CreateJobParams) (*entity.Job, error) {
	const q = `
INSERT INTO document_jobs
	(id, tenant_id, document_profile_id, facility_id, status, mime_type, size_bytes, storage_key)
VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7)
RETURNING created_at, updated_at;
`
	job := &entity.Job{
		ID:                p.ID,
		TenantID:          p.TenantID,
		DocumentProfileID: p.DocumentProfileID,
		FacilityID:        p.FacilityID,
		Status:            entity.StatusPending,
		Source:            p.Source,
	}

	if err := r.pool.QueryRow(ctx, q,
		p.ID, p.TenantID, p.DocumentProfileID, p.FacilityID,
		p.Source.MimeType, p.Source.SizeBytes, p.Source.StorageKey,
	).Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return job, nil
}

// GetByID always filters by tenant. A job under a different tenant scans zero
// rows and comes back ErrNotFound, exactly like a job that never existed.
func (r *JobRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*entity.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM document_jobs WHERE id = $1 AND tenant_id = $2;`
	return r.scanJob(r.pool.QueryRow(ctx, q, id, tenantID))
}

// GetForWorker is the worker-side lookup, keyed by job id alone. It is not
// reachable from any API operation; tenant-facing reads go through GetByID.
func (r *JobRepository) GetForWorker(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM document_jobs WHERE id = $1;`
	return r.scanJob(r.pool.QueryRow(ctx, q, id))
}

// Advance moves a job along one forward edge. The update is conditional on the
// current status matching the edge's predecessor, so two workers racing on the
// same job cannot both succeed: the loser affects zero rows and gets
// ErrInvalidTransition.
func (r *JobRepository) Advance(ctx context.Context, id uuid.UUID, next entity.JobStatus, result json.RawMessage, errorDetail *string) error {
	var from entity.JobStatus
	switch next {
	case entity.StatusProcessing:
		from = entity.StatusPending
	case entity.StatusCompleted, entity.StatusFailed:
		from = entity.StatusProcessing
	default:
		return ErrInvalidTransition
	}
	if !from.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	const q = `
UPDATE document_jobs
SET status = $3, result = $4, error_detail = $5, updated_at = now()
WHERE id = $1 AND status = $2;
`
	tag, err := r.pool.Exec(ctx, q, id, string(from), string(next), result, errorDetail)
	if err != nil {
		return fmt.Errorf("advance job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *JobRepository) scanJob(row pgx.Row) (*entity.Job, error) {
	var (
		job        entity.Job
		statusText string
		result     []byte
	)

	if err := row.Scan(
		&job.ID,
		&job.TenantID,
		&job.DocumentProfileID,
		&job.FacilityID,
		&statusText,
		&job.Source.MimeType,
		&job.Source.SizeBytes,
		&job.Source.StorageKey,
		&result,
		&job.ErrorDetail,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	job.Status = entity.JobStatus(statusText)
	if result != nil {
		job.Result = json.RawMessage(result)
	}

	return &job, nil
}
