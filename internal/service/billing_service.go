package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/integration/stripeclient"
	"github.com/visionary-advance/agency-api/internal/mapper"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// invoiceFreshness is how long a mirrored invoice is trusted before a
// refresh actually calls Stripe again
const invoiceFreshness = time.Hour

type BillingService struct {
	stripeRepo   *repository.StripeRepository
	leadRepo     *repository.LeadRepository
	stripeClient *stripeclient.Client
	logger       *zap.Logger
}

func NewBillingService(
	stripeRepo *repository.StripeRepository,
	leadRepo *repository.LeadRepository,
	stripeClient *stripeclient.Client,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		stripeRepo:   stripeRepo,
		leadRepo:     leadRepo,
		stripeClient: stripeClient,
		logger:       logger,
	}
}

// CreateInvoice creates and sends a Stripe invoice for a lead,
// creating the Stripe customer on first use. The invoice is mirrored
// locally so the panel can list it without calling Stripe.
func (s *BillingService) CreateInvoice(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.StripeInvoiceDTO, error) {
	if s.stripeClient == nil {
		return nil, ErrBillingDisabled
	}

	lead, err := s.leadRepo.GetByID(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, req.LeadID)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	customer, err := s.ensureCustomer(ctx, lead)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	invoice, err := s.stripeClient.CreateInvoice(customer.StripeCustomerID, req.AmountCents, currency, req.Description, req.DaysUntilDue)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe invoice: %w", err)
	}

	mirror := &domain.StripeInvoice{
		LeadID:          lead.ID,
		StripeInvoiceID: invoice.ID,
		Status:          invoice.Status,
		AmountDue:       invoice.AmountDue,
		AmountPaid:      invoice.AmountPaid,
		Currency:        invoice.Currency,
		HostedURL:       invoice.HostedURL,
		DueDate:         invoice.DueDate,
		PaidAt:          invoice.PaidAt,
	}
	if err := s.stripeRepo.UpsertInvoice(ctx, mirror); err != nil {
		// The invoice exists in Stripe either way; the mirror catches
		// up on the next refresh
		s.logger.Warn("failed to mirror stripe invoice",
			zap.String("stripe_invoice_id", invoice.ID),
			zap.Error(err),
		)
	}

	dto := mapper.ToStripeInvoiceDTO(mirror)
	return &dto, nil
}

// RefreshInvoice re-reads one invoice from Stripe and updates the
// mirror. Mirrors refreshed within the freshness window are returned
// as-is; the check is check-then-act, so concurrent refreshes may both
// call Stripe, which only costs a duplicate read.
func (s *BillingService) RefreshInvoice(ctx context.Context, leadID uuid.UUID, stripeInvoiceID string) (*domain.StripeInvoiceDTO, error) {
	if s.stripeClient == nil {
		return nil, ErrBillingDisabled
	}

	existing, err := s.stripeRepo.GetInvoiceByStripeID(ctx, stripeInvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invoice mirror: %w", err)
	}
	if existing != nil && time.Since(existing.UpdatedAt) < invoiceFreshness {
		dto := mapper.ToStripeInvoiceDTO(existing)
		return &dto, nil
	}

	invoice, err := s.stripeClient.GetInvoice(stripeInvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stripe invoice: %w", err)
	}

	mirror := &domain.StripeInvoice{
		LeadID:          leadID,
		StripeInvoiceID: invoice.ID,
		Status:          invoice.Status,
		AmountDue:       invoice.AmountDue,
		AmountPaid:      invoice.AmountPaid,
		Currency:        invoice.Currency,
		HostedURL:       invoice.HostedURL,
		DueDate:         invoice.DueDate,
		PaidAt:          invoice.PaidAt,
	}
	if err := s.stripeRepo.UpsertInvoice(ctx, mirror); err != nil {
		return nil, fmt.Errorf("failed to update invoice mirror: %w", err)
	}

	dto := mapper.ToStripeInvoiceDTO(mirror)
	return &dto, nil
}

func (s *BillingService) ListInvoicesByLead(ctx context.Context, leadID uuid.UUID) ([]domain.StripeInvoiceDTO, error) {
	invoices, err := s.stripeRepo.ListInvoicesByLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	dtos := make([]domain.StripeInvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = mapper.ToStripeInvoiceDTO(&invoices[i])
	}
	return dtos, nil
}

func (s *BillingService) ListInvoices(ctx context.Context, page, pageSize int, status string) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	invoices, total, err := s.stripeRepo.ListInvoices(ctx, page, pageSize, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	dtos := make([]domain.StripeInvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = mapper.ToStripeInvoiceDTO(&invoices[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *BillingService) ensureCustomer(ctx context.Context, lead *domain.Lead) (*domain.StripeCustomer, error) {
	customer, err := s.stripeRepo.GetCustomerByLead(ctx, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up stripe customer: %w", err)
	}
	if customer != nil {
		return customer, nil
	}

	remote, err := s.stripeClient.CreateCustomer(lead.Email, lead.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe customer: %w", err)
	}

	customer = &domain.StripeCustomer{
		LeadID:           lead.ID,
		StripeCustomerID: remote.ID,
		Email:            lead.Email,
	}
	if err := s.stripeRepo.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to store stripe customer: %w", err)
	}
	return customer, nil
}
