package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService     *service.LeadService
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, activityService *service.ActivityService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService:     leadService,
		activityService: activityService,
		logger:          logger,
	}
}

// @Summary List leads
// @Description List leads with optional filters
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param stage query string false "Filter by stage (contact, plan_audit_meeting, discovery_call, proposal, offer, negotiating, won, lost)"
// @Param source query string false "Filter by source"
// @Param isClient query bool false "Filter by client flag"
// @Param businessId query string false "Filter by business ID"
// @Param minScore query int false "Minimum score"
// @Param maxScore query int false "Maximum score"
// @Param createdAfter query string false "Created after date (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before date (YYYY-MM-DD)"
// @Param q query string false "Free-text search"
// @Param sort query string false "Sort by (created_desc, created_asc, score_desc, score_asc, updated_desc, name_asc)"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.LeadFilters{}

	if s := r.URL.Query().Get("stage"); s != "" {
		stage := domain.LeadStage(s)
		filters.Stage = &stage
	}
	if src := r.URL.Query().Get("source"); src != "" {
		source := domain.LeadSource(src)
		filters.Source = &source
	}
	if ic := r.URL.Query().Get("isClient"); ic != "" {
		if v, err := strconv.ParseBool(ic); err == nil {
			filters.IsClient = &v
		}
	}
	if bid := r.URL.Query().Get("businessId"); bid != "" {
		if id, err := uuid.Parse(bid); err == nil {
			filters.BusinessID = &id
		}
	}
	if ms := r.URL.Query().Get("minScore"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			filters.MinScore = &v
		}
	}
	if ms := r.URL.Query().Get("maxScore"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			filters.MaxScore = &v
		}
	}
	if ca := r.URL.Query().Get("createdAfter"); ca != "" {
		if t, err := time.Parse("2006-01-02", ca); err == nil {
			filters.CreatedAfter = &t
		}
	}
	if cb := r.URL.Query().Get("createdBefore"); cb != "" {
		if t, err := time.Parse("2006-01-02", cb); err == nil {
			filters.CreatedBefore = &t
		}
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	sortBy := repository.LeadSortByCreatedDesc
	if s := r.URL.Query().Get("sort"); s != "" {
		sortBy = repository.LeadSortOption(s)
	}

	result, err := h.leadService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Intake lead
// @Description Create or merge a lead from a form or audit submission
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.LeadIntakeRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads [post]
func (h *LeadHandler) Intake(w http.ResponseWriter, r *http.Request) {
	var req domain.LeadIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Intake(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to intake lead", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to process lead")
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.String())
	respondJSON(w, http.StatusCreated, lead)
}

// @Summary Get lead
// @Description Get a lead by ID with pinned activities, recent activity, projects and proposals
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadWithDetailsDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Lead not found")
			return
		}
		h.logger.Error("failed to get lead", zap.Error(err), zap.String("lead_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Update lead
// @Description Update lead fields; non-client leads are re-scored
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadRequest true "Lead data"
// @Success 200 {object} domain.LeadDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Lead not found")
			return
		}
		h.logger.Error("failed to update lead", zap.Error(err), zap.String("lead_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to update lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Update lead stage
// @Description Move a lead to a different pipeline stage; moving to won converts to client
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadStageRequest true "Stage data"
// @Success 200 {object} domain.LeadDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/stage [put]
func (h *LeadHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.UpdateLeadStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.UpdateStage(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStage):
			respondWithError(w, http.StatusBadRequest, "Invalid stage")
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Lead not found")
		default:
			h.logger.Error("failed to update lead stage", zap.Error(err), zap.String("lead_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to update lead stage")
		}
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Pipeline overview
// @Description Get open leads grouped by pipeline stage
// @Tags Leads
// @Produce json
// @Success 200 {object} map[string][]domain.LeadDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/pipeline [get]
func (h *LeadHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	pipeline, err := h.leadService.GetPipeline(r.Context())
	if err != nil {
		h.logger.Error("failed to get pipeline", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get pipeline")
		return
	}

	respondJSON(w, http.StatusOK, pipeline)
}

// @Summary Search leads
// @Description Free-text search across lead name, email, company and website
// @Tags Leads
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Max results" default(20)
// @Success 200 {array} domain.LeadDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/search [get]
func (h *LeadHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}
	limit := queryInt(r, "limit", 20)

	leads, err := h.leadService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to search leads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search leads")
		return
	}

	respondJSON(w, http.StatusOK, leads)
}

// @Summary List lead activities
// @Description List the activity log for a lead, pinned entries first
// @Tags Activities
// @Produce json
// @Param id path string true "Lead ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param type query string false "Filter by activity type"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/activities [get]
func (h *LeadHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	page, pageSize := parsePagination(r)

	var activityType *domain.ActivityType
	if t := r.URL.Query().Get("type"); t != "" {
		at := domain.ActivityType(t)
		activityType = &at
	}

	result, err := h.activityService.ListByLead(r.Context(), id, page, pageSize, activityType)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err), zap.String("lead_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create lead activity
// @Description Append an entry to a lead's activity log
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.CreateActivityRequest true "Activity data"
// @Success 201 {object} domain.ActivityDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/activities [post]
func (h *LeadHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	activity, err := h.activityService.Create(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Lead not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create activity", zap.Error(err), zap.String("lead_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to create activity")
		}
		return
	}

	respondJSON(w, http.StatusCreated, activity)
}
