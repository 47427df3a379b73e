package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
)

type SiteHandler struct {
	siteService    *service.SiteService
	monitorService *service.MonitorService
	logger         *zap.Logger
}

func NewSiteHandler(siteService *service.SiteService, monitorService *service.MonitorService, logger *zap.Logger) *SiteHandler {
	return &SiteHandler{
		siteService:    siteService,
		monitorService: monitorService,
		logger:         logger,
	}
}

// @Summary List sites
// @Description List monitored sites with current status overlay
// @Tags Sites
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param active query bool false "Only active sites"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sites [get]
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	activeOnly := false
	if a := r.URL.Query().Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			activeOnly = v
		}
	}

	result, err := h.siteService.List(r.Context(), page, pageSize, activeOnly)
	if err != nil {
		h.logger.Error("failed to list sites", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list sites")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create site
// @Description Register a site for health monitoring
// @Tags Sites
// @Accept json
// @Produce json
// @Param request body domain.CreateSiteRequest true "Site data"
// @Success 201 {object} domain.SiteDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sites [post]
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	site, err := h.siteService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create site", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create site")
		return
	}

	w.Header().Set("Location", "/api/v1/sites/"+site.ID.String())
	respondJSON(w, http.StatusCreated, site)
}

// @Summary Get site
// @Description Get a site by ID with current status and open incident count
// @Tags Sites
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} domain.SiteDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sites/{id} [get]
func (h *SiteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid site ID: must be a valid UUID")
		return
	}

	site, err := h.siteService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("failed to get site", zap.Error(err), zap.String("site_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get site")
		return
	}

	respondJSON(w, http.StatusOK, site)
}

// @Summary Update site
// @Description Update a monitored site
// @Tags Sites
// @Accept json
// @Produce json
// @Param id path string true "Site ID"
// @Param request body domain.UpdateSiteRequest true "Site data"
// @Success 200 {object} domain.SiteDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sites/{id} [put]
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid site ID: must be a valid UUID")
		return
	}

	var req domain.UpdateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	site, err := h.siteService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("failed to update site", zap.Error(err), zap.String("site_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to update site")
		return
	}

	respondJSON(w, http.StatusOK, site)
}

// @Summary Delete site
// @Description Remove a site from monitoring
// @Tags Sites
// @Param id path string true "Site ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sites/{id} [delete]
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid site ID: must be a valid UUID")
		return
	}

	if err := h.siteService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("failed to delete site", zap.Error(err), zap.String("site_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete site")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Run health check
// @Description Probe a site immediately and return the classified result
// @Tags Sites
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} domain.CheckResultDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sites/{id}/check [post]
func (h *SiteHandler) RunCheck(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid site ID: must be a valid UUID")
		return
	}

	result, err := h.monitorService.PerformHealthCheck(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("failed to run health check", zap.Error(err), zap.String("site_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to run health check")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Health check history
// @Description Page through stored health checks for a site, newest first
// @Tags Sites
// @Produce json
// @Param id path string true "Site ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sites/{id}/checks [get]
func (h *SiteHandler) HealthHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid site ID: must be a valid UUID")
		return
	}

	page, pageSize := parsePagination(r)

	result, err := h.siteService.HealthHistory(r.Context(), id, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("failed to list health checks", zap.Error(err), zap.String("site_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list health checks")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
