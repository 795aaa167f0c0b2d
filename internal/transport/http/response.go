package httptransport

import (
	"encoding/json"
	"net/http"

	"document-ingest-service/internal/apierror"
)

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the taxonomy shape. Anything that is not an
// apierror.Error becomes an opaque 500; internals never reach the caller.
func writeError(w http.ResponseWriter, err error) {
	if apiErr, ok := apierror.FromError(err); ok {
		writeJSON(w, apiErr.StatusCode, apiErrorBody{Code: apiErr.Code, Message: apiErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, apiErrorBody{
		Code:    "INTERNAL",
		Message: "internal error",
	})
}
