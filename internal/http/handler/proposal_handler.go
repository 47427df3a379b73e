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

type ProposalHandler struct {
	proposalService *service.ProposalService
	logger          *zap.Logger
}

func NewProposalHandler(proposalService *service.ProposalService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		logger:          logger,
	}
}

// @Summary List proposals
// @Description List proposals with optional filters
// @Tags Proposals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status (draft, sent, viewed, accepted, rejected, expired)"
// @Param leadId query string false "Filter by lead ID"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals [get]
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.ProposalFilters{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.ProposalStatus(s)
		filters.Status = &status
	}
	if lid := r.URL.Query().Get("leadId"); lid != "" {
		if id, err := uuid.Parse(lid); err == nil {
			filters.LeadID = &id
		}
	}

	result, err := h.proposalService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list proposals", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list proposals")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create proposal
// @Description Create a draft proposal with a fresh public token
// @Tags Proposals
// @Accept json
// @Produce json
// @Param request body domain.CreateProposalRequest true "Proposal data"
// @Success 201 {object} domain.ProposalDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals [post]
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proposal, err := h.proposalService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusBadRequest, "Lead not found")
			return
		}
		h.logger.Error("failed to create proposal", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create proposal")
		return
	}

	w.Header().Set("Location", "/api/v1/proposals/"+proposal.ID.String())
	respondJSON(w, http.StatusCreated, proposal)
}

// @Summary Get proposal
// @Description Get a proposal by ID
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.ProposalDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id} [get]
func (h *ProposalHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proposal ID: must be a valid UUID")
		return
	}

	proposal, err := h.proposalService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Proposal not found")
			return
		}
		h.logger.Error("failed to get proposal", zap.Error(err), zap.String("proposal_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get proposal")
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// @Summary Update proposal
// @Description Update a draft proposal; sent proposals are immutable
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body domain.UpdateProposalRequest true "Proposal data"
// @Success 200 {object} domain.ProposalDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id} [put]
func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proposal ID: must be a valid UUID")
		return
	}

	var req domain.UpdateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proposal, err := h.proposalService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Proposal not found")
		case errors.Is(err, service.ErrProposalLocked):
			respondWithError(w, http.StatusConflict, "Sent proposals cannot be edited")
		default:
			h.logger.Error("failed to update proposal", zap.Error(err), zap.String("proposal_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to update proposal")
		}
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// @Summary Delete proposal
// @Description Delete a proposal; accepted proposals cannot be deleted
// @Tags Proposals
// @Param id path string true "Proposal ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id} [delete]
func (h *ProposalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proposal ID: must be a valid UUID")
		return
	}

	if err := h.proposalService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Proposal not found")
		case errors.Is(err, service.ErrProposalDecided):
			respondWithError(w, http.StatusConflict, "Accepted proposals cannot be deleted")
		default:
			h.logger.Error("failed to delete proposal", zap.Error(err), zap.String("proposal_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to delete proposal")
		}
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Send proposal
// @Description Mark a draft as sent and email the public link to the lead
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.ProposalDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id}/send [post]
func (h *ProposalHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proposal ID: must be a valid UUID")
		return
	}

	proposal, err := h.proposalService.Send(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Proposal not found")
		case errors.Is(err, service.ErrProposalLocked):
			respondWithError(w, http.StatusConflict, "Proposal has already been sent")
		default:
			h.logger.Error("failed to send proposal", zap.Error(err), zap.String("proposal_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to send proposal")
		}
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// PublicView serves the recipient-facing proposal page by token.
// No authentication: the token is the credential.
//
// @Summary View proposal by token
// @Description Public endpoint serving a proposal to its recipient
// @Tags Public
// @Produce json
// @Param token path string true "Public token"
// @Success 200 {object} domain.PublicProposalDTO
// @Router /p/{token} [get]
func (h *ProposalHandler) PublicView(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusNotFound, "Proposal not found")
		return
	}

	proposal, err := h.proposalService.ViewByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Proposal not found")
			return
		}
		h.logger.Error("failed to view proposal", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load proposal")
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// @Summary Decide proposal by token
// @Description Public endpoint recording the recipient's accept or reject
// @Tags Public
// @Accept json
// @Produce json
// @Param token path string true "Public token"
// @Param request body domain.DecideProposalRequest true "Decision"
// @Success 200 {object} domain.PublicProposalDTO
// @Router /p/{token}/decision [post]
func (h *ProposalHandler) PublicDecide(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusNotFound, "Proposal not found")
		return
	}

	var req domain.DecideProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proposal, err := h.proposalService.DecideByToken(r.Context(), token, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Proposal not found")
		case errors.Is(err, service.ErrProposalDecided):
			respondWithError(w, http.StatusConflict, "Proposal has already been decided")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to decide proposal", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to record decision")
		}
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}
