package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
)

type SEOHandler struct {
	seoService *service.SEOService
	logger     *zap.Logger
}

func NewSEOHandler(seoService *service.SEOService, logger *zap.Logger) *SEOHandler {
	return &SEOHandler{
		seoService: seoService,
		logger:     logger,
	}
}

// @Summary Generate SEO report
// @Description Ask the language model for a report on a site and store it
// @Tags SEO
// @Accept json
// @Produce json
// @Param request body domain.GenerateSEOReportRequest true "Site reference"
// @Success 201 {object} domain.SEOReportDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /seo/reports [post]
func (h *SEOHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateSEOReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	report, err := h.seoService.Generate(r.Context(), req.SiteID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReportsDisabled):
			respondWithError(w, http.StatusServiceUnavailable, "Report generation is not configured")
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusBadRequest, "Site not found")
		default:
			h.logger.Error("failed to generate report", zap.Error(err), zap.String("site_id", req.SiteID.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to generate report")
		}
		return
	}

	respondJSON(w, http.StatusCreated, report)
}

// @Summary Get SEO report
// @Description Get a stored report by ID
// @Tags SEO
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} domain.SEOReportDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /seo/reports/{id} [get]
func (h *SEOHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report ID: must be a valid UUID")
		return
	}

	report, err := h.seoService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.logger.Error("failed to get report", zap.Error(err), zap.String("report_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// @Summary Delete SEO report
// @Description Delete a stored report
// @Tags SEO
// @Param id path string true "Report ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /seo/reports/{id} [delete]
func (h *SEOHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report ID: must be a valid UUID")
		return
	}

	if err := h.seoService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.logger.Error("failed to delete report", zap.Error(err), zap.String("report_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete report")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary List site SEO reports
// @Description List stored reports for one site, newest first
// @Tags SEO
// @Produce json
// @Param id path string true "Site ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sites/{id}/seo-reports [get]
func (h *SEOHandler) ListBySite(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid site ID: must be a valid UUID")
		return
	}

	page, pageSize := parsePagination(r)

	result, err := h.seoService.ListBySite(r.Context(), id, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err), zap.String("site_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
