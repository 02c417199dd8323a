package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/services"
)

// WatchlistHandler handles watch list and alert HTTP requests.
type WatchlistHandler struct {
	watchlistService services.WatchlistService
	explorer         services.ConnectionExplorer
	logger           *zap.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(
	watchlistService services.WatchlistService,
	explorer services.ConnectionExplorer,
	logger *zap.Logger,
) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
		explorer:         explorer,
		logger:           logger,
	}
}

// RegisterRoutes registers the watch list routes on the given mux.
func (h *WatchlistHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/watchlist", h.Add)
	mux.HandleFunc("GET /api/watchlist", h.List)
	mux.HandleFunc("DELETE /api/watchlist/{id}", h.Deactivate)
	mux.HandleFunc("GET /api/watchlist/{id}/profile", h.Profile)
	mux.HandleFunc("GET /api/watchlist/{id}/connections", h.Connections)
	mux.HandleFunc("GET /api/watchlist/{id}/graph", h.Graph)
	mux.HandleFunc("POST /api/watchlist/scan", h.Scan)
	mux.HandleFunc("GET /api/watchlist/suggestions", h.Suggestions)
	mux.HandleFunc("GET /api/alerts", h.Alerts)
	mux.HandleFunc("POST /api/alerts/{id}/read", h.MarkAlertRead)
	mux.HandleFunc("POST /api/alerts/read-all", h.MarkAllAlertsRead)
}

type addWatchedEntityRequest struct {
	Name   string  `json:"name"`
	NIF    *string `json:"nif,omitempty"`
	Kind   string  `json:"kind"`
	Office *string `json:"office,omitempty"`
	Party  *string `json:"party,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// Add handles POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addWatchedEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_name", "Entity name is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	switch req.Kind {
	case models.WatchedKindPerson, models.WatchedKindCompany, models.WatchedKindPublicBody:
	default:
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_kind", "Kind must be person, company, or public_body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	entity, created, err := h.watchlistService.Add(r.Context(), &models.WatchedEntity{
		Name:   req.Name,
		NIF:    req.NIF,
		Kind:   req.Kind,
		Office: req.Office,
		Party:  req.Party,
		Notes:  req.Notes,
	})
	if err != nil {
		ServiceError(w, err, "add_watched_entity_failed", h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: entity}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.watchlistService.List(r.Context(), boolQuery(r, "active_only", true))
	if err != nil {
		ServiceError(w, err, "list_watchlist_failed", h.logger)
		return
	}

	if entities == nil {
		entities = make([]*models.WatchedEntity, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: entities}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Deactivate handles DELETE /api/watchlist/{id}
func (h *WatchlistHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.watchlistService.Deactivate(r.Context(), id); err != nil {
		ServiceError(w, err, "deactivate_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Entity deactivated"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Profile handles GET /api/watchlist/{id}/profile
func (h *WatchlistHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	profile, err := h.watchlistService.Profile(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "profile_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: profile}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Connections handles GET /api/watchlist/{id}/connections
func (h *WatchlistHandler) Connections(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}
	depth, err := strconv.Atoi(r.URL.Query().Get("depth"))
	if err != nil || depth <= 0 {
		depth = 2
	}

	connections, err := h.explorer.FindConnections(r.Context(), id, depth)
	if err != nil {
		ServiceError(w, err, "connections_failed", h.logger)
		return
	}

	if connections == nil {
		connections = make([]models.Connection, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: connections}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Graph handles GET /api/watchlist/{id}/graph
func (h *WatchlistHandler) Graph(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}
	depth, err := strconv.Atoi(r.URL.Query().Get("depth"))
	if err != nil || depth <= 0 {
		depth = 2
	}

	graph, err := h.explorer.BuildGraph(r.Context(), id, depth)
	if err != nil {
		ServiceError(w, err, "graph_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: graph}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Scan handles POST /api/watchlist/scan. Optional date_from/date_to query
// params restrict the scan to contracts dated in that range.
func (h *WatchlistHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var filters models.ContractFilters
	if t, err := time.Parse("2006-01-02", r.URL.Query().Get("date_from")); err == nil {
		filters.DateFrom = &t
	}
	if t, err := time.Parse("2006-01-02", r.URL.Query().Get("date_to")); err == nil {
		filters.DateTo = &t
	}

	raised, err := h.watchlistService.Scan(r.Context(), filters)
	if err != nil {
		ServiceError(w, err, "scan_failed", h.logger)
		return
	}

	if raised == nil {
		raised = make([]*models.Alert, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: raised}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Suggestions handles GET /api/watchlist/suggestions
func (h *WatchlistHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.watchlistService.Suggestions(r.Context())
	if err != nil {
		ServiceError(w, err, "suggestions_failed", h.logger)
		return
	}

	if suggestions == nil {
		suggestions = make([]models.EntitySuggestion, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: suggestions}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Alerts handles GET /api/alerts
func (h *WatchlistHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.watchlistService.Alerts(r.Context(), boolQuery(r, "unread_only", false))
	if err != nil {
		ServiceError(w, err, "list_alerts_failed", h.logger)
		return
	}

	if alerts == nil {
		alerts = make([]*models.Alert, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: alerts}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MarkAlertRead handles POST /api/alerts/{id}/read
func (h *WatchlistHandler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.watchlistService.MarkAlertRead(r.Context(), id); err != nil {
		ServiceError(w, err, "mark_alert_read_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Alert marked read"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// MarkAllAlertsRead handles POST /api/alerts/read-all
func (h *WatchlistHandler) MarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.watchlistService.MarkAllAlertsRead(r.Context())
	if err != nil {
		ServiceError(w, err, "mark_all_read_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    markAllReadResponse{Updated: n},
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
