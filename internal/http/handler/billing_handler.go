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

type BillingHandler struct {
	billingService *service.BillingService
	logger         *zap.Logger
}

func NewBillingHandler(billingService *service.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// @Summary Create invoice
// @Description Create and send a Stripe invoice for a lead
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body domain.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} domain.StripeInvoiceDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /billing/invoices [post]
func (h *BillingHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.billingService.CreateInvoice(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBillingDisabled):
			respondWithError(w, http.StatusServiceUnavailable, "Billing is not configured")
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusBadRequest, "Lead not found")
		default:
			h.logger.Error("failed to create invoice", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to create invoice")
		}
		return
	}

	respondJSON(w, http.StatusCreated, invoice)
}

// @Summary List invoices
// @Description List mirrored Stripe invoices
// @Tags Billing
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by Stripe status"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /billing/invoices [get]
func (h *BillingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := r.URL.Query().Get("status")

	result, err := h.billingService.ListInvoices(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list invoices")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary List lead invoices
// @Description List mirrored invoices for one lead
// @Tags Billing
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {array} domain.StripeInvoiceDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/invoices [get]
func (h *BillingHandler) ListLeadInvoices(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	invoices, err := h.billingService.ListInvoicesByLead(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list lead invoices", zap.Error(err), zap.String("lead_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list invoices")
		return
	}

	respondJSON(w, http.StatusOK, invoices)
}

// @Summary Refresh invoice
// @Description Re-read an invoice from Stripe and update the local mirror
// @Tags Billing
// @Produce json
// @Param id path string true "Lead ID"
// @Param invoiceId path string true "Stripe invoice ID"
// @Success 200 {object} domain.StripeInvoiceDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/invoices/{invoiceId}/refresh [post]
func (h *BillingHandler) RefreshInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}
	invoiceID := chi.URLParam(r, "invoiceId")
	if invoiceID == "" {
		respondWithError(w, http.StatusBadRequest, "Invoice ID is required")
		return
	}

	invoice, err := h.billingService.RefreshInvoice(r.Context(), id, invoiceID)
	if err != nil {
		if errors.Is(err, service.ErrBillingDisabled) {
			respondWithError(w, http.StatusServiceUnavailable, "Billing is not configured")
			return
		}
		h.logger.Error("failed to refresh invoice", zap.Error(err), zap.String("stripe_invoice_id", invoiceID))
		respondWithError(w, http.StatusInternalServerError, "Failed to refresh invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}
