package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"document-ingest-service/internal/entity"
	"document-ingest-service/internal/repository/postgresql"
	"document-ingest-service/internal/worker"
)

type trackingRepo struct {
	job        *entity.Job
	advances   []entity.JobStatus
	lastResult json.RawMessage
	lastDetail *string
}

func (r *trackingRepo) GetForWorker(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	if r.job == nil || r.job.ID != id {
		return nil, postgresql.ErrNotFound
	}
	return r.job, nil
}

// Advance mirrors the real repository's conditional update against the
// in-memory job.
func (r *trackingRepo) Advance(ctx context.Context, id uuid.UUID, next entity.JobStatus, result json.RawMessage, detail *string) error {
	if r.job == nil || r.job.ID != id || !r.job.Status.CanTransitionTo(next) {
		return postgresql.ErrInvalidTransition
	}
	r.job.Status = next
	r.advances = append(r.advances, next)
	r.lastResult = result
	r.lastDetail = detail
	return nil
}

type bytesStore struct {
	data []byte
	err  error
}

func (s *bytesStore) Download(ctx context.Context, storageKey string) ([]byte, error) {
	return s.data, s.err
}

type fixedExtractor struct {
	result json.RawMessage
	err    error
}

func (e fixedExtractor) Extract(ctx context.Context, profileID, mimeType string, data []byte) (json.RawMessage, error) {
	return e.result, e.err
}

func pendingJob() *entity.Job {
	return &entity.Job{
		ID:                uuid.New(),
		TenantID:          "tenant-a",
		DocumentProfileID: "profile-1",
		Status:            entity.StatusPending,
		Source: entity.Source{
			MimeType:   "application/pdf",
			SizeBytes:  8,
			StorageKey: "tenants/tenant-a/jobs/x/source/doc",
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessor_CompletesJob(t *testing.T) {
	repo := &trackingRepo{job: pendingJob()}
	ext := fixedExtractor{result: json.RawMessage(`{"items":[]}`)}
	p := worker.NewProcessor(repo, &bytesStore{data: []byte("%PDF-1.4")}, ext, discardLogger())

	if err := p.Process(context.Background(), repo.job.ID.String()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := []entity.JobStatus{entity.StatusProcessing, entity.StatusCompleted}
	if len(repo.advances) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, repo.advances)
	}
	for i := range want {
		if repo.advances[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, repo.advances)
		}
	}
	if string(repo.lastResult) != `{"items":[]}` {
		t.Fatalf("expected extractor result persisted, got %s", repo.lastResult)
	}
}

func TestProcessor_DuplicateDeliveryDropped(t *testing.T) {
	job := pendingJob()
	job.Status = entity.StatusCompleted // already terminal
	repo := &trackingRepo{job: job}
	p := worker.NewProcessor(repo, &bytesStore{}, fixedExtractor{}, discardLogger())

	if err := p.Process(context.Background(), job.ID.String()); err != nil {
		t.Fatalf("duplicate delivery must be a no-op, got %v", err)
	}
	if len(repo.advances) != 0 {
		t.Fatalf("expected no transitions, got %v", repo.advances)
	}
}

func TestProcessor_DownloadFailure_MarksFailed(t *testing.T) {
	repo := &trackingRepo{job: pendingJob()}
	p := worker.NewProcessor(repo, &bytesStore{err: errors.New("object gone")}, fixedExtractor{}, discardLogger())

	if err := p.Process(context.Background(), repo.job.ID.String()); err != nil {
		t.Fatalf("expected nil error after recording failure, got %v", err)
	}

	if repo.job.Status != entity.StatusFailed {
		t.Fatalf("expected failed, got %s", repo.job.Status)
	}
	if repo.lastDetail == nil {
		t.Fatal("expected an error detail")
	}
}

func TestProcessor_ExtractionFailure_MarksFailed(t *testing.T) {
	repo := &trackingRepo{job: pendingJob()}
	ext := fixedExtractor{err: errors.New("unreadable scan")}
	p := worker.NewProcessor(repo, &bytesStore{data: []byte("%PDF-1.4")}, ext, discardLogger())

	if err := p.Process(context.Background(), repo.job.ID.String()); err != nil {
		t.Fatalf("expected nil error after recording failure, got %v", err)
	}

	if repo.job.Status != entity.StatusFailed {
		t.Fatalf("expected failed, got %s", repo.job.Status)
	}
	if repo.lastDetail == nil || *repo.lastDetail == "" {
		t.Fatal("expected an error detail")
	}
	if repo.lastResult != nil {
		t.Fatalf("failed job must carry no result, got %s", repo.lastResult)
	}
}

func TestProcessor_BadJobID(t *testing.T) {
	p := worker.NewProcessor(&trackingRepo{}, &bytesStore{}, fixedExtractor{}, discardLogger())
	if err := p.Process(context.Background(), "not-a-uuid"); err == nil {
		t.Fatal("expected an error for an unparseable id")
	}
}
