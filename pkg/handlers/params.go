package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/apperrors"
	"github.com/basewatch/basewatch-engine/pkg/logging"
	"github.com/basewatch/basewatch-engine/pkg/models"
)

// ParseIDPathValue parses the {id} path segment as a UUID, writing a 400 on
// failure.
func ParseIDPathValue(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid ID format"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// ServiceError maps service layer failures onto an HTTP error response.
func ServiceError(w http.ResponseWriter, err error, errorCode string, logger *zap.Logger) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidRelation), errors.Is(err, apperrors.ErrInvalidKind):
		status = http.StatusBadRequest
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = logging.SanitizeError(err)
		logger.Error("Request failed", zap.String("error", message))
	}
	if err := ErrorResponse(w, status, errorCode, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// parseContractFilters reads the contract search filters from query params.
// Malformed numeric or date values are ignored rather than rejected.
func parseContractFilters(r *http.Request) models.ContractFilters {
	q := r.URL.Query()
	filters := models.ContractFilters{
		Awarder:   q.Get("awarder"),
		Awardee:   q.Get("awardee"),
		NIF:       q.Get("nif"),
		Category:  q.Get("category"),
		Procedure: q.Get("procedure"),
	}
	if v, err := strconv.ParseFloat(q.Get("min_value"), 64); err == nil {
		filters.MinValue = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_value"), 64); err == nil {
		filters.MaxValue = &v
	}
	if t, err := time.Parse("2006-01-02", q.Get("date_from")); err == nil {
		filters.DateFrom = &t
	}
	if t, err := time.Parse("2006-01-02", q.Get("date_to")); err == nil {
		filters.DateTo = &t
	}
	return filters
}

func boolQuery(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
