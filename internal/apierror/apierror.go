// Package apierror is the single boundary between internal failures and what
// callers see. Nothing vendor-specific (pgx codes, S3 error names) is allowed
// to cross it; callers branch on Code, not on message text.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeInvalidFile          = "INVALID_FILE"
	CodeJobNotFound          = "JOB_NOT_FOUND"

	// CodeServiceUnavailable covers transient storage/repository I/O failures.
	// It is outside the validated business taxonomy and safe to retry.
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(statusCode int, code, message string) *Error {
	return &Error{StatusCode: statusCode, Code: code, Message: message}
}

func Unauthorized() *Error {
	// Identity and scope failures share one shape so a caller cannot tell
	// which was missing.
	return New(http.StatusUnauthorized, CodeUnauthorized, "missing or invalid credential")
}

func UnsupportedMediaType(mimeType string) *Error {
	return New(http.StatusUnsupportedMediaType, CodeUnsupportedMediaType,
		fmt.Sprintf("unsupported media type: %s", mimeType))
}

func PayloadTooLarge(sizeBytes, maxBytes int64) *Error {
	return New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		fmt.Sprintf("file too large: %d bytes (max %d bytes)", sizeBytes, maxBytes))
}

func InvalidFile(message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidFile, message)
}

func JobNotFound() *Error {
	return New(http.StatusNotFound, CodeJobNotFound, "job not found")
}

func ServiceUnavailable() *Error {
	return New(http.StatusServiceUnavailable, CodeServiceUnavailable,
		"temporarily unable to process the request, retry later")
}

// FromError extracts an *Error if err carries one.
func FromError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
