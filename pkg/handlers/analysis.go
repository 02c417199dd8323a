package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/services"
)

// AnalysisHandler handles pattern analysis HTTP requests.
type AnalysisHandler struct {
	analysisService services.AnalysisService
	logger          *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService services.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// RegisterRoutes registers the analysis routes on the given mux.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/analysis/patterns", h.Patterns)
	mux.HandleFunc("GET /api/analysis/thresholds", h.Thresholds)
}

type patternsResponse struct {
	Findings   []models.Finding `json:"findings"`
	Total      int              `json:"total"`
	BySeverity map[string]int   `json:"by_severity"`
}

// Patterns handles GET /api/analysis/patterns
// Accepts the same query filters as the contract search to scope the run.
func (h *AnalysisHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	findings, err := h.analysisService.AnalyzePatterns(r.Context(), parseContractFilters(r))
	if err != nil {
		ServiceError(w, err, "analysis_failed", h.logger)
		return
	}

	if findings == nil {
		findings = make([]models.Finding, 0)
	}
	bySeverity := make(map[string]int)
	for _, f := range findings {
		bySeverity[f.Severity]++
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: patternsResponse{
			Findings:   findings,
			Total:      len(findings),
			BySeverity: bySeverity,
		},
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Thresholds handles GET /api/analysis/thresholds
func (h *AnalysisHandler) Thresholds(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    h.analysisService.Thresholds(),
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
