package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"document-ingest-service/internal/apierror"
	"document-ingest-service/internal/auth"
	"document-ingest-service/internal/entity"
	"document-ingest-service/internal/repository/postgresql"
)

// Repository port (implementation: postgresql.JobRepository). Tenant identity
// is a mandatory parameter on every read so an unscoped query cannot be
// expressed.
type JobRepository interface {
	Create(ctx context.Context, p postgresql.CreateJobParams) (*entity.Job, error)
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*entity.Job, error)
}

// ObjectStorage port (implementation: storage.S3Adapter).
type ObjectStorage interface {
	Put(ctx context.Context, tenantID string, jobID uuid.UUID, body io.Reader, sizeBytes int64, mimeType, filename string) (string, error)
	SignedReadURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
}

// Authenticator port (implementation: auth.Gate).
type Authenticator interface {
	Authenticate(ctx context.Context, credential, requiredScope string) (auth.Identity, error)
}

// JobEnqueuer is the small enqueue-only slice of Queue the ingestion path needs.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, jobID string) error
}

// IngestService orchestrates ingestion and status reads. Every operation runs
// the auth gate first; nothing else happens for an unauthenticated call.
type IngestService struct {
	authGate     Authenticator
	validator    *FileValidator
	storage      ObjectStorage
	repo         JobRepository
	queue        JobEnqueuer
	signedURLTTL time.Duration
	logger       *slog.Logger
}

func NewIngestService(
	authGate Authenticator,
	validator *FileValidator,
	storage ObjectStorage,
	repo JobRepository,
	queue JobEnqueuer,
	signedURLTTL time.Duration,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		authGate:     authGate,
		validator:    validator,
		storage:      storage,
		repo:         repo,
		queue:        queue,
		signedURLTTL: signedURLTTL,
		logger:       logger,
	}
}

// Upload is a single incoming file payload.
type Upload struct {
	Filename  string
	MimeType  string
	SizeBytes int64
	Body      io.Reader
}

type IngestRequest struct {
	Credential        string
	File              Upload
	DocumentProfileID string
	FacilityID        *string
}

// IngestResponse is the minimal descriptor returned on 201. It never echoes
// the raw bytes or an unsigned storage key.
type IngestResponse struct {
	JobID             uuid.UUID        `json:"job_id"`
	Status            entity.JobStatus `json:"status"`
	DocumentProfileID string           `json:"document_profile_id"`
	FacilityID        *string          `json:"facility_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// IngestDocument runs authenticate -> validate -> store -> create -> enqueue.
// Each step short-circuits the rest; validation happens before any write so a
// rejected upload leaves no job and no object behind. The storage write
// strictly precedes the job row: a crash in between leaves an orphaned object
// for garbage collection, never a job claiming bytes that are not retrievable.
func (s *IngestService) IngestDocument(ctx context.Context, req IngestRequest) (*IngestResponse, error) {
	identity, err := s.authGate.Authenticate(ctx, req.Credential, auth.ScopeDocumentsWrite)
	if err != nil {
		return nil, mapAuthError(err)
	}

	if req.DocumentProfileID == "" {
		return nil, apierror.InvalidFile("document_profile_id is required")
	}

	if err := s.validator.Validate(FileInfo{MimeType: req.File.MimeType, SizeBytes: req.File.SizeBytes}); err != nil {
		return nil, err
	}

	jobID := uuid.New()

	storageKey, err := s.storage.Put(ctx, identity.TenantID, jobID, req.File.Body, req.File.SizeBytes, req.File.MimeType, req.File.Filename)
	if err != nil {
		s.logger.Error("storage put failed", "tenant_id", identity.TenantID, "job_id", jobID, "error", err)
		return nil, apierror.ServiceUnavailable()
	}

	job, err := s.repo.Create(ctx, postgresql.CreateJobParams{
		ID:                jobID,
		TenantID:          identity.TenantID,
		DocumentProfileID: req.DocumentProfileID,
		FacilityID:        req.FacilityID,
		Source: entity.Source{
			MimeType:   req.File.MimeType,
			SizeBytes:  req.File.SizeBytes,
			StorageKey: storageKey,
		},
	})
	if err != nil {
		s.logger.Error("job create failed", "tenant_id", identity.TenantID, "job_id", jobID, "error", err)
		return nil, apierror.ServiceUnavailable()
	}

	// Enqueue failure is not fatal: the row is durable and the reaper/requeue
	// path can still hand the job to a worker.
	if err := s.queue.Enqueue(ctx, job.ID.String()); err != nil {
		s.logger.Warn("enqueue failed, job awaits requeue", "job_id", job.ID, "error", err)
	}

	s.logger.Info("document ingested", "tenant_id", identity.TenantID, "job_id", job.ID,
		"document_profile_id", job.DocumentProfileID, "size_bytes", job.Source.SizeBytes)

	return &IngestResponse{
		JobID:             job.ID,
		Status:            job.Status,
		DocumentProfileID: job.DocumentProfileID,
		FacilityID:        job.FacilityID,
		CreatedAt:         job.CreatedAt,
	}, nil
}

// SourceView is the source block of a status response. SignedURL is minted
// fresh on every read and is nil when signing failed.
type SourceView struct {
	MimeType  string  `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes"`
	SignedURL *string `json:"signed_url"`
}

type JobStatusResponse struct {
	JobID             uuid.UUID        `json:"job_id"`
	Status            entity.JobStatus `json:"status"`
	DocumentProfileID string           `json:"document_profile_id"`
	FacilityID        *string          `json:"facility_id,omitempty"`
	Source            SourceView       `json:"source"`
	Result            json.RawMessage  `json:"result,omitempty"`
	ErrorDetail       *string          `json:"error_detail,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// GetJobStatus reads a job under the caller's tenant. A job owned by another
// tenant and a job that never existed produce the same JOB_NOT_FOUND; no
// distinct "forbidden" signal exists to enumerate against.
func (s *IngestService) GetJobStatus(ctx context.Context, credential string, jobID uuid.UUID) (*JobStatusResponse, error) {
	identity, err := s.authGate.Authenticate(ctx, credential, auth.ScopeDocumentsRead)
	if err != nil {
		return nil, mapAuthError(err)
	}

	job, err := s.repo.GetByID(ctx, identity.TenantID, jobID)
	if err != nil {
		if errors.Is(err, postgresql.ErrNotFound) {
			return nil, apierror.JobNotFound()
		}
		s.logger.Error("job lookup failed", "tenant_id", identity.TenantID, "job_id", jobID, "error", err)
		return nil, apierror.ServiceUnavailable()
	}

	var signedURL *string
	url, err := s.storage.SignedReadURL(ctx, job.Source.StorageKey, s.signedURLTTL)
	if err != nil {
		// Degrade to a null link rather than failing the whole read.
		s.logger.Warn("signed url generation failed", "tenant_id", identity.TenantID, "job_id", job.ID, "error", err)
	} else {
		signedURL = &url
	}

	return &JobStatusResponse{
		JobID:             job.ID,
		Status:            job.Status,
		DocumentProfileID: job.DocumentProfileID,
		FacilityID:        job.FacilityID,
		Source: SourceView{
			MimeType:  job.Source.MimeType,
			SizeBytes: job.Source.SizeBytes,
			SignedURL: signedURL,
		},
		Result:      job.Result,
		ErrorDetail: job.ErrorDetail,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}, nil
}

func mapAuthError(err error) error {
	if errors.Is(err, auth.ErrUnauthorized) {
		return apierror.Unauthorized()
	}
	// Credential store I/O failure, not a rejection.
	return apierror.ServiceUnavailable()
}
