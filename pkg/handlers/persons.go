package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/services"
)

// PersonsHandler handles person, association, and position HTTP requests.
type PersonsHandler struct {
	personService services.PersonService
	logger        *zap.Logger
}

// NewPersonsHandler creates a new PersonsHandler.
func NewPersonsHandler(personService services.PersonService, logger *zap.Logger) *PersonsHandler {
	return &PersonsHandler{
		personService: personService,
		logger:        logger,
	}
}

// RegisterRoutes registers the person routes on the given mux.
func (h *PersonsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/persons", h.Add)
	mux.HandleFunc("GET /api/persons", h.List)
	mux.HandleFunc("GET /api/persons/{id}", h.Get)
	mux.HandleFunc("GET /api/persons/search", h.Search)
	mux.HandleFunc("POST /api/persons/{id}/associations", h.AddAssociation)
	mux.HandleFunc("GET /api/persons/{id}/associations", h.ListAssociations)
	mux.HandleFunc("POST /api/persons/{id}/positions", h.AddPosition)
	mux.HandleFunc("GET /api/persons/{id}/positions", h.ListPositions)
}

type addPersonRequest struct {
	Name   string  `json:"name"`
	Office *string `json:"office,omitempty"`
	Party  *string `json:"party,omitempty"`
	Role   *string `json:"role,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// Add handles POST /api/persons
func (h *PersonsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_name", "Person name is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	person, created, err := h.personService.AddPerson(r.Context(), &models.Person{
		Name:   req.Name,
		Office: req.Office,
		Party:  req.Party,
		Role:   req.Role,
		Notes:  req.Notes,
	})
	if err != nil {
		ServiceError(w, err, "add_person_failed", h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: person}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/persons
func (h *PersonsHandler) List(w http.ResponseWriter, r *http.Request) {
	persons, err := h.personService.ListPersons(r.Context())
	if err != nil {
		ServiceError(w, err, "list_persons_failed", h.logger)
		return
	}

	if persons == nil {
		persons = make([]*models.Person, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: persons}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/persons/{id}
func (h *PersonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	person, err := h.personService.GetPerson(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "get_person_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: person}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Search handles GET /api/persons/search?name=...
// Expands the person into direct and association-derived contracts.
func (h *PersonsHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_name", "Query parameter 'name' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.personService.SearchByPerson(r.Context(), name)
	if err != nil {
		ServiceError(w, err, "person_search_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type addAssociationRequest struct {
	CompanyName  string   `json:"company_name"`
	CompanyNIF   *string  `json:"company_nif,omitempty"`
	Relation     string   `json:"relation"`
	OwnershipPct *float64 `json:"ownership_pct,omitempty"`
	StartDate    *string  `json:"start_date,omitempty"`
	EndDate      *string  `json:"end_date,omitempty"`
	Source       *string  `json:"source,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// AddAssociation handles POST /api/persons/{id}/associations
func (h *PersonsHandler) AddAssociation(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	var req addAssociationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.CompanyName == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_company", "Company name is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	assoc := &models.Association{
		PersonID:     id,
		CompanyName:  req.CompanyName,
		CompanyNIF:   req.CompanyNIF,
		Relation:     req.Relation,
		OwnershipPct: req.OwnershipPct,
		Source:       req.Source,
		Notes:        req.Notes,
	}
	if d, ok := parseDatePtr(req.StartDate); ok {
		assoc.StartDate = d
	}
	if d, ok := parseDatePtr(req.EndDate); ok {
		assoc.EndDate = d
	}

	if err := h.personService.AddAssociation(r.Context(), assoc); err != nil {
		ServiceError(w, err, "add_association_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: assoc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListAssociations handles GET /api/persons/{id}/associations
func (h *PersonsHandler) ListAssociations(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	associations, err := h.personService.ListAssociations(r.Context(), id, boolQuery(r, "active_only", false))
	if err != nil {
		ServiceError(w, err, "list_associations_failed", h.logger)
		return
	}

	if associations == nil {
		associations = make([]*models.Association, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: associations}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type addPositionRequest struct {
	Title     string  `json:"title"`
	Entity    *string `json:"entity,omitempty"`
	Party     *string `json:"party,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// AddPosition handles POST /api/persons/{id}/positions
func (h *PersonsHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	var req addPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Title == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_title", "Position title is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	pos := &models.PoliticalPosition{
		PersonID: id,
		Title:    req.Title,
		Entity:   req.Entity,
		Party:    req.Party,
	}
	if d, ok := parseDatePtr(req.StartDate); ok {
		pos.StartDate = d
	}
	if d, ok := parseDatePtr(req.EndDate); ok {
		pos.EndDate = d
	}

	if err := h.personService.AddPosition(r.Context(), pos); err != nil {
		ServiceError(w, err, "add_position_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: pos}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListPositions handles GET /api/persons/{id}/positions
func (h *PersonsHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDPathValue(w, r, h.logger)
	if !ok {
		return
	}

	positions, err := h.personService.ListPositions(r.Context(), id, boolQuery(r, "active_only", false))
	if err != nil {
		ServiceError(w, err, "list_positions_failed", h.logger)
		return
	}

	if positions == nil {
		positions = make([]*models.PoliticalPosition, 0)
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: positions}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// parseDatePtr parses an optional "2006-01-02" string.
func parseDatePtr(s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, false
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
