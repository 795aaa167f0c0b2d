package httptransport

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"document-ingest-service/internal/apierror"
	"document-ingest-service/internal/service"
)

// multipartMemoryLimit bounds how much of an upload is buffered in memory;
// the rest spills to temp files.
const multipartMemoryLimit = 8 << 20

type Handler struct {
	ingestSvc *service.IngestService
}

func NewHandler(ingestSvc *service.IngestService) *Handler {
	return &Handler{ingestSvc: ingestSvc}
}

// IngestDocument godoc
// @Summary Ingest a document
// @Description Validates the upload, stores the artifact, and records a pending extraction job.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "document payload"
// @Param document_profile_id formData string true "extraction profile id"
// @Param facility_id formData string false "optional facility scope"
// @Success 201 {object} service.IngestResponse
// @Failure 400 {object} apiErrorBody
// @Failure 401 {object} apiErrorBody
// @Failure 413 {object} apiErrorBody
// @Failure 415 {object} apiErrorBody
// @Router /documents [post]
func (h *Handler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, apierror.InvalidFile("expected multipart/form-data with a file part"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.InvalidFile("missing file part"))
		return
	}
	defer file.Close()

	var facilityID *string
	if v := r.FormValue("facility_id"); v != "" {
		facilityID = &v
	}

	resp, err := h.ingestSvc.IngestDocument(r.Context(), service.IngestRequest{
		Credential: bearerToken(r),
		File: service.Upload{
			Filename:  header.Filename,
			MimeType:  header.Header.Get("Content-Type"),
			SizeBytes: header.Size,
			Body:      file,
		},
		DocumentProfileID: r.FormValue("document_profile_id"),
		FacilityID:        facilityID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetJobStatus godoc
// @Summary Get job status
// @Description Returns the job's lifecycle state and a fresh time-limited download link.
// @Tags documents
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} service.JobStatusResponse
// @Failure 401 {object} apiErrorBody
// @Failure 404 {object} apiErrorBody
// @Router /documents/{id} [get]
func (h *Handler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// A malformed id names no job under any tenant.
		writeError(w, apierror.JobNotFound())
		return
	}

	resp, err := h.ingestSvc.GetJobStatus(r.Context(), bearerToken(r), jobID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// bearerToken extracts the credential from the Authorization header. Returns
// "" when absent; the auth gate rejects empty credentials first.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
