package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
)

type IncidentHandler struct {
	incidentService *service.IncidentService
	logger          *zap.Logger
}

func NewIncidentHandler(incidentService *service.IncidentService, logger *zap.Logger) *IncidentHandler {
	return &IncidentHandler{
		incidentService: incidentService,
		logger:          logger,
	}
}

// @Summary List incidents
// @Description List incidents with optional filters
// @Tags Incidents
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param siteId query string false "Filter by site ID"
// @Param status query string false "Filter by status (open, acknowledged, resolved)"
// @Param type query string false "Filter by type (downtime, degraded_performance, ssl_expiry)"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /incidents [get]
func (h *IncidentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.IncidentFilters{}
	if sid := r.URL.Query().Get("siteId"); sid != "" {
		if id, err := uuid.Parse(sid); err == nil {
			filters.SiteID = &id
		}
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.IncidentStatus(s)
		filters.Status = &status
	}
	if t := r.URL.Query().Get("type"); t != "" {
		incidentType := domain.IncidentType(t)
		filters.Type = &incidentType
	}

	result, err := h.incidentService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list incidents", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list incidents")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Get incident
// @Description Get an incident by ID
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} domain.IncidentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /incidents/{id} [get]
func (h *IncidentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid incident ID: must be a valid UUID")
		return
	}

	incident, err := h.incidentService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Incident not found")
			return
		}
		h.logger.Error("failed to get incident", zap.Error(err), zap.String("incident_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get incident")
		return
	}

	respondJSON(w, http.StatusOK, incident)
}

// @Summary Update incident status
// @Description Acknowledge, resolve or reopen an incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Param request body domain.UpdateIncidentStatusRequest true "Status"
// @Success 200 {object} domain.IncidentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /incidents/{id}/status [put]
func (h *IncidentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid incident ID: must be a valid UUID")
		return
	}

	var req domain.UpdateIncidentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	incident, err := h.incidentService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Incident not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update incident", zap.Error(err), zap.String("incident_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to update incident")
		}
		return
	}

	respondJSON(w, http.StatusOK, incident)
}
