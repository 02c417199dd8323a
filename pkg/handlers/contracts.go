package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/jsonutil"
	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/services"
)

// ContractsHandler handles contract ingestion and search HTTP requests.
type ContractsHandler struct {
	contractService services.ContractService
	logger          *zap.Logger
}

// NewContractsHandler creates a new ContractsHandler.
func NewContractsHandler(contractService services.ContractService, logger *zap.Logger) *ContractsHandler {
	return &ContractsHandler{
		contractService: contractService,
		logger:          logger,
	}
}

// RegisterRoutes registers the contract routes on the given mux.
func (h *ContractsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/contracts", h.Ingest)
	mux.HandleFunc("GET /api/contracts", h.Search)
	mux.HandleFunc("GET /api/contracts/{id}", h.Get)
	mux.HandleFunc("GET /api/stats", h.Stats)
}

// contractPayload shadows the value field so BASE exports that carry money
// strings ("1.234,56 €") decode alongside plain numbers.
type contractPayload struct {
	models.Contract
	Value json.RawMessage `json:"value"`
}

type ingestRequest struct {
	Contracts []contractPayload `json:"contracts"`
}

type ingestResponse struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
}

// Ingest handles POST /api/contracts
func (h *ContractsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if len(req.Contracts) == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "empty_batch", "No contracts in request"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	contracts := make([]*models.Contract, 0, len(req.Contracts))
	for _, p := range req.Contracts {
		c := p.Contract
		value, err := jsonutil.FlexibleFloat(p.Value)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_value",
				fmt.Sprintf("Unparseable value for contract %s", p.ID)); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		c.Value = value
		contracts = append(contracts, &c)
	}

	inserted, err := h.contractService.Ingest(r.Context(), contracts)
	if err != nil {
		ServiceError(w, err, "ingest_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    ingestResponse{Received: len(req.Contracts), Inserted: inserted},
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Search handles GET /api/contracts
func (h *ContractsHandler) Search(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractService.Search(r.Context(), parseContractFilters(r))
	if err != nil {
		ServiceError(w, err, "search_failed", h.logger)
		return
	}

	if contracts == nil {
		contracts = make([]*models.Contract, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: contracts}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/contracts/{id}
func (h *ContractsHandler) Get(w http.ResponseWriter, r *http.Request) {
	contract, err := h.contractService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		ServiceError(w, err, "get_contract_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: contract}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Stats handles GET /api/stats
func (h *ContractsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.contractService.Stats(r.Context())
	if err != nil {
		ServiceError(w, err, "stats_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: stats}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
