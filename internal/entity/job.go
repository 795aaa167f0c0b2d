package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// transitions is the full set of allowed edges. Everything else is rejected,
// so a job can never move backwards or skip straight to a terminal state.
var transitions = map[JobStatus][]JobStatus{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether next is an allowed forward edge from s.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Source is the write-once record of what was ingested. It is captured at
// upload time and never rewritten afterwards. StorageKey stays internal;
// callers get a signed URL minted on demand instead.
type Source struct {
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	StorageKey string `json:"-"`
}

type Job struct {
	ID                uuid.UUID       `json:"job_id"`
	TenantID          string          `json:"tenant_id"`
	DocumentProfileID string          `json:"document_profile_id"`
	FacilityID        *string         `json:"facility_id,omitempty"`
	Status            JobStatus       `json:"status"`
	Source            Source          `json:"source"`
	Result            json.RawMessage `json:"result,omitempty"`
	ErrorDetail       *string         `json:"error_detail,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
