package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createBillingService(db *gorm.DB) *service.BillingService {
	return service.NewBillingService(
		repository.NewStripeRepository(db),
		repository.NewLeadRepository(db),
		nil,
		zap.NewNop(),
	)
}

func TestBillingService_DisabledWithoutStripe(t *testing.T) {
	db := setupTestDB(t)
	svc := createBillingService(db)

	lead := createTestLead(t, db, "billed@example.com")

	_, err := svc.CreateInvoice(testContext(), &domain.CreateInvoiceRequest{
		LeadID:      lead.ID,
		AmountCents: 150000,
		Description: "Website redesign deposit",
	})
	assert.ErrorIs(t, err, service.ErrBillingDisabled)

	_, err = svc.RefreshInvoice(testContext(), lead.ID, "in_123")
	assert.ErrorIs(t, err, service.ErrBillingDisabled)
}

func TestBillingService_ListInvoicesByLead(t *testing.T) {
	db := setupTestDB(t)
	svc := createBillingService(db)

	lead := createTestLead(t, db, "mirrored@example.com")
	other := createTestLead(t, db, "other@example.com")

	invoices := []domain.StripeInvoice{
		{LeadID: lead.ID, StripeInvoiceID: "in_001", Status: "open", AmountDue: 150000, Currency: "usd"},
		{LeadID: lead.ID, StripeInvoiceID: "in_002", Status: "paid", AmountDue: 80000, AmountPaid: 80000, Currency: "usd"},
		{LeadID: other.ID, StripeInvoiceID: "in_003", Status: "open", AmountDue: 5000, Currency: "usd"},
	}
	for i := range invoices {
		require.NoError(t, db.Create(&invoices[i]).Error)
	}

	// Mirrored invoices are readable even with billing disabled
	listed, err := svc.ListInvoicesByLead(testContext(), lead.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	t.Run("paginated list filters by status", func(t *testing.T) {
		page, err := svc.ListInvoices(testContext(), 1, 10, "open")
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("paginated list without filter", func(t *testing.T) {
		page, err := svc.ListInvoices(testContext(), 1, 10, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
	})
}
