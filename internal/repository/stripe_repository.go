package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StripeRepository mirrors Stripe customers and invoices locally so
// the admin panel can list billing state without hitting the Stripe
// API on every page load.
type StripeRepository struct {
	db *gorm.DB
}

func NewStripeRepository(db *gorm.DB) *StripeRepository {
	return &StripeRepository{db: db}
}

func (r *StripeRepository) CreateCustomer(ctx context.Context, customer *domain.StripeCustomer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(customer).Error
}

// GetCustomerByLead returns the Stripe customer mirror for a lead, or
// nil if the lead has never been billed.
func (r *StripeRepository) GetCustomerByLead(ctx context.Context, leadID uuid.UUID) (*domain.StripeCustomer, error) {
	var customer domain.StripeCustomer
	err := r.db.WithContext(ctx).
		First(&customer, "lead_id = ?", leadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// MarkCustomerSynced stamps the freshness marker on a customer mirror
func (r *StripeRepository) MarkCustomerSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.StripeCustomer{}).
		Where("id = ?", id).
		Update("last_synced_at", at).Error
}

// UpsertInvoice inserts or refreshes an invoice mirror keyed by the
// Stripe invoice id.
func (r *StripeRepository) UpsertInvoice(ctx context.Context, invoice *domain.StripeInvoice) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_invoice_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "amount_due", "amount_paid", "hosted_url", "due_date", "paid_at", "updated_at",
			}),
		}).
		Create(invoice).Error
}

// GetInvoiceByStripeID returns the local mirror of a Stripe invoice,
// or nil when it has never been mirrored.
func (r *StripeRepository) GetInvoiceByStripeID(ctx context.Context, stripeInvoiceID string) (*domain.StripeInvoice, error) {
	var invoice domain.StripeInvoice
	err := r.db.WithContext(ctx).
		Where("stripe_invoice_id = ?", stripeInvoiceID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListInvoicesByLead returns the invoice mirrors for a lead, newest first
func (r *StripeRepository) ListInvoicesByLead(ctx context.Context, leadID uuid.UUID) ([]domain.StripeInvoice, error) {
	var invoices []domain.StripeInvoice
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

// ListInvoices returns all invoice mirrors with optional status filter
func (r *StripeRepository) ListInvoices(ctx context.Context, page, pageSize int, status string) ([]domain.StripeInvoice, int64, error) {
	var invoices []domain.StripeInvoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.StripeInvoice{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&invoices).Error

	return invoices, total, err
}
