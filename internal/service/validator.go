package service

import (
	"strings"

	"document-ingest-service/internal/apierror"
)

// FileInfo is the declared shape of an upload, checked before any byte is
// stored.
type FileInfo struct {
	MimeType  string
	SizeBytes int64
}

// FileValidator checks uploads against the configured allow-list and size
// bound. It is pure: no I/O, no side effects, safe to call anywhere.
type FileValidator struct {
	allowed  map[string]struct{}
	maxBytes int64
}

func NewFileValidator(allowedMimes []string, maxBytes int64) *FileValidator {
	allowed := make(map[string]struct{}, len(allowedMimes))
	for _, m := range allowedMimes {
		allowed[strings.ToLower(m)] = struct{}{}
	}
	return &FileValidator{allowed: allowed, maxBytes: maxBytes}
}

// Validate runs the checks in a fixed order so the first violation always
// wins: emptiness, then media type, then size. A file at exactly maxBytes
// passes.
func (v *FileValidator) Validate(file FileInfo) error {
	if file.SizeBytes == 0 {
		return apierror.InvalidFile("file is empty")
	}
	if _, ok := v.allowed[strings.ToLower(file.MimeType)]; !ok {
		return apierror.UnsupportedMediaType(file.MimeType)
	}
	if file.SizeBytes > v.maxBytes {
		return apierror.PayloadTooLarge(file.SizeBytes, v.maxBytes)
	}
	return nil
}
