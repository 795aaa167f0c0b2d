// Package storage persists raw document artifacts in S3 and mints time-limited
// signed read URLs. Object keys are namespaced by tenant and job so two tenants
// can never collide on a storage location, whatever filenames they reuse.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Config carries the object-store surface injected at construction.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional override for MinIO/localstack
}

type S3Adapter struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    *slog.Logger
}

func NewS3Adapter(ctx context.Context, cfg Config, logger *slog.Logger) (*S3Adapter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Adapter{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		logger:    logger,
	}, nil
}

// Put uploads an artifact under a tenant/job-scoped key and returns that key.
// The object is encrypted at rest (SSE-S3). Logs carry ids and sizes only,
// never filenames or content.
func (a *S3Adapter) Put(ctx context.Context, tenantID string, jobID uuid.UUID, body io.Reader, sizeBytes int64, mimeType, filename string) (string, error) {
	key := ObjectKey(tenantID, jobID, filename)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(a.bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentLength:        aws.Int64(sizeBytes),
		ContentType:          aws.String(mimeType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
		Metadata: map[string]string{
			"tenant-id": tenantID,
			"job-id":    jobID.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 put: %w", err)
	}

	a.logger.Info("artifact stored", "tenant_id", tenantID, "job_id", jobID, "size_bytes", sizeBytes)
	return key, nil
}

// SignedReadURL mints a presigned GET for storageKey, valid for ttl. Called on
// every status read; URLs are never stored, so a leaked job row grants nothing.
func (a *S3Adapter) SignedReadURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error) {
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign: %w", err)
	}
	return req.URL, nil
}

// Download fetches the whole artifact. Used by the worker, never by the API.
func (a *S3Adapter) Download(ctx context.Context, storageKey string) ([]byte, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body: %w", err)
	}
	return data, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ObjectKey builds the tenant-isolated key. The filename is sanitized so path
// traversal characters cannot escape the job prefix.
func ObjectKey(tenantID string, jobID uuid.UUID, filename string) string {
	safe := unsafeKeyChars.ReplaceAllString(filename, "_")
	if safe == "" {
		safe = "document"
	}
	return fmt.Sprintf("tenants/%s/jobs/%s/source/%s", tenantID, jobID, safe)
}
