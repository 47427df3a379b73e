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

type BusinessHandler struct {
	businessService *service.BusinessService
	logger          *zap.Logger
}

func NewBusinessHandler(businessService *service.BusinessService, logger *zap.Logger) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
		logger:          logger,
	}
}

// @Summary List businesses
// @Description List businesses with optional name search
// @Tags Businesses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param q query string false "Search by name"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /businesses [get]
func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("q")

	result, err := h.businessService.List(r.Context(), page, pageSize, search)
	if err != nil {
		h.logger.Error("failed to list businesses", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list businesses")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create business
// @Description Create a new business
// @Tags Businesses
// @Accept json
// @Produce json
// @Param request body domain.CreateBusinessRequest true "Business data"
// @Success 201 {object} domain.BusinessDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /businesses [post]
func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	business, err := h.businessService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create business", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create business")
		return
	}

	w.Header().Set("Location", "/api/v1/businesses/"+business.ID.String())
	respondJSON(w, http.StatusCreated, business)
}

// @Summary Get business
// @Description Get a business by ID with lead and site counts
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} domain.BusinessDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /businesses/{id} [get]
func (h *BusinessHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID: must be a valid UUID")
		return
	}

	business, err := h.businessService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to get business", zap.Error(err), zap.String("business_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get business")
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// @Summary Update business
// @Description Update a business
// @Tags Businesses
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body domain.UpdateBusinessRequest true "Business data"
// @Success 200 {object} domain.BusinessDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /businesses/{id} [put]
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID: must be a valid UUID")
		return
	}

	var req domain.UpdateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	business, err := h.businessService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to update business", zap.Error(err), zap.String("business_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to update business")
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// @Summary Delete business
// @Description Delete a business; its leads and sites are kept
// @Tags Businesses
// @Param id path string true "Business ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /businesses/{id} [delete]
func (h *BusinessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID: must be a valid UUID")
		return
	}

	if err := h.businessService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to delete business", zap.Error(err), zap.String("business_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete business")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
