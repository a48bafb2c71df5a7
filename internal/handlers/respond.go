package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"encoding/json"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/apperr"
	"github.com/tukangsapu/sapu/internal/metrics"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug.Printf("Error encoding response: %v", err)
	}
}

// writeError maps the error taxonomy to HTTP statuses. Fetch and
// persistence failures surface as retryable 5xx; validation failures are
// the caller's to fix.
func writeError(w http.ResponseWriter, err error) {
	var verr *apperr.ValidationError
	var uerr *apperr.UploadError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
	case errors.As(err, &uerr):
		logger.Error.Printf("Upload failed: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "photo upload failed, retry the submission"})
	case errors.Is(err, sql.ErrNoRows):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		logger.Error.Printf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error, retry later"})
	}
}

func observe(path, method string, start time.Time, status int) {
	metrics.APIRequestDuration.WithLabelValues(
		path,
		method,
		strconv.Itoa(status),
	).Observe(time.Since(start).Seconds())
}
