package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakehq/jaketodo/internal/models"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondDetail sends the {"detail": ...} error envelope: a string for plain
// failures, a list of fieldDetail for validation failures.
func respondDetail(w http.ResponseWriter, status int, detail any) {
	respondJSON(w, status, map[string]any{"detail": detail})
}

// fieldDetail is one entry in a 422 validation response
type fieldDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// respondRepoError maps the repository error taxonomy onto HTTP statuses:
// not-found to 404, validation to 422, anything else to 500.
func respondRepoError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondDetail(w, http.StatusNotFound, "TODO not found")
	case errors.As(err, &verr):
		respondDetail(w, http.StatusUnprocessableEntity, []fieldDetail{{Field: verr.Field, Reason: verr.Reason}})
	default:
		logger.Error("store_operation_failed", zap.Error(err))
		respondDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON decodes the request body into dst, responding on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondDetail(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondStructErrors turns validator tag failures into the 422 field-detail
// shape.
func respondStructErrors(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]fieldDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldDetail{
				Field:  strings.ToLower(fe.Field()),
				Reason: fmt.Sprintf("failed %q validation", fe.Tag()),
			})
		}
		respondDetail(w, http.StatusUnprocessableEntity, details)
		return
	}
	respondDetail(w, http.StatusUnprocessableEntity, "Validation failed")
}
