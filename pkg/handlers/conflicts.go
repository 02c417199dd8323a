package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/services"
)

// ConflictsHandler handles conflict-of-interest HTTP requests.
type ConflictsHandler struct {
	conflictService services.ConflictService
	logger          *zap.Logger
}

// NewConflictsHandler creates a new ConflictsHandler.
func NewConflictsHandler(conflictService services.ConflictService, logger *zap.Logger) *ConflictsHandler {
	return &ConflictsHandler{
		conflictService: conflictService,
		logger:          logger,
	}
}

// RegisterRoutes registers the conflict routes on the given mux.
func (h *ConflictsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/conflicts/detect", h.Detect)
	mux.HandleFunc("GET /api/conflicts", h.List)
	mux.HandleFunc("POST /api/conflicts/{id}/review", h.MarkReviewed)
}

// Detect handles POST /api/conflicts/detect
// An optional person_id query parameter restricts the scan to one person.
func (h *ConflictsHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var personID *uuid.UUID
	if raw := r.URL.Query().Get("person_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_person_id", "Invalid person ID format"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		personID = &id
	}

	conflicts, err := h.conflictService.Detect(r.Context(), personID)
	if err != nil {
		ServiceError(w, err, "detect_conflicts_failed", h.logger)
		return
	}

	if conflicts == nil {
		conflicts = make([]*models.Conflict, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: conflicts}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/conflicts
func (h *ConflictsHandler) List(w http.ResponseWriter, r *http.Request) {
	conflicts, err := h.conflictService.List(r.Context(), boolQuery(r, "unreviewed_only", true))
	if err != nil {
		ServiceError(w, err, "list_conflicts_failed", h.logger)
		return
	}

	if conflicts == nil {
		conflicts = make([]*models.Conflict, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: conflicts}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MarkReviewed handles POST /api/conflicts/{id}/review
func (h *ConflictsHandler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.conflictService.MarkReviewed(r.Context(), id); err != nil {
		ServiceError(w, err, "mark_reviewed_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Conflict marked reviewed"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
