package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createProposalService(db *gorm.DB) *service.ProposalService {
	return service.NewProposalService(
		repository.NewProposalRepository(db),
		repository.NewLeadRepository(db),
		repository.NewActivityRepository(db),
		nil, // no mail client configured in tests
		"https://proposals.example.com",
		zap.NewNop(),
	)
}

func createDraftProposal(t *testing.T, svc *service.ProposalService, db *gorm.DB, email string) *domain.ProposalDTO {
	t.Helper()
	lead := createTestLead(t, db, email)
	dto, err := svc.Create(testContext(), &domain.CreateProposalRequest{
		Title:  "Website redesign",
		LeadID: lead.ID,
		Amount: 12000,
	})
	require.NoError(t, err)
	return dto
}

func TestProposalService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := createProposalService(db)
	ctx := testContext()

	t.Run("creates a draft with a public token", func(t *testing.T) {
		lead := createTestLead(t, db, "proposal@example.com")

		dto, err := svc.Create(ctx, &domain.CreateProposalRequest{
			Title:  "Website redesign",
			LeadID: lead.ID,
			Amount: 15000,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ProposalDraft, dto.Status)
		assert.Len(t, dto.PublicToken, 64, "token is 32 random bytes hex encoded")
		assert.Nil(t, dto.SentAt)
	})

	t.Run("tokens are unique per proposal", func(t *testing.T) {
		lead := createTestLead(t, db, "proposal-tokens@example.com")

		first, err := svc.Create(ctx, &domain.CreateProposalRequest{Title: "A", LeadID: lead.ID})
		require.NoError(t, err)
		second, err := svc.Create(ctx, &domain.CreateProposalRequest{Title: "B", LeadID: lead.ID})
		require.NoError(t, err)

		assert.NotEqual(t, first.PublicToken, second.PublicToken)
	})

	t.Run("unknown lead is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateProposalRequest{
			Title:  "Orphan",
			LeadID: uuid.New(),
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestProposalService_SendAndEdit(t *testing.T) {
	db := setupTestDB(t)
	svc := createProposalService(db)
	ctx := testContext()

	t.Run("send flips a draft to sent", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "send@example.com")

		dto, err := svc.Send(ctx, draft.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.ProposalSent, dto.Status)
		assert.NotNil(t, dto.SentAt)

		var activity domain.Activity
		require.NoError(t, db.Where("title = ?", "Proposal sent").First(&activity).Error)
		assert.Equal(t, domain.ActivitySystem, activity.Type)
	})

	t.Run("a sent proposal cannot be sent again", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "resend@example.com")
		_, err := svc.Send(ctx, draft.ID)
		require.NoError(t, err)

		_, err = svc.Send(ctx, draft.ID)
		assert.ErrorIs(t, err, service.ErrProposalLocked)
	})

	t.Run("a sent proposal cannot be edited", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "locked@example.com")

		_, err := svc.Update(ctx, draft.ID, &domain.UpdateProposalRequest{Title: "Edited", Amount: 1})
		require.NoError(t, err, "drafts are editable")

		_, err = svc.Send(ctx, draft.ID)
		require.NoError(t, err)

		_, err = svc.Update(ctx, draft.ID, &domain.UpdateProposalRequest{Title: "Too late", Amount: 1})
		assert.ErrorIs(t, err, service.ErrProposalLocked)
	})
}

func TestProposalService_PublicAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := createProposalService(db)
	ctx := testContext()

	t.Run("drafts are not publicly visible", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "public-draft@example.com")

		_, err := svc.ViewByToken(ctx, draft.PublicToken)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("first view flips sent to viewed", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "public-view@example.com")
		_, err := svc.Send(ctx, draft.ID)
		require.NoError(t, err)

		view, err := svc.ViewByToken(ctx, draft.PublicToken)
		require.NoError(t, err)
		assert.Equal(t, domain.ProposalViewed, view.Status)

		// The public view never leaks internal identifiers
		assert.Equal(t, "Website redesign", view.Title)

		var stored domain.Proposal
		require.NoError(t, db.First(&stored, "id = ?", draft.ID).Error)
		assert.NotNil(t, stored.ViewedAt)
		firstViewed := *stored.ViewedAt

		_, err = svc.ViewByToken(ctx, draft.PublicToken)
		require.NoError(t, err)
		require.NoError(t, db.First(&stored, "id = ?", draft.ID).Error)
		assert.Equal(t, firstViewed.Unix(), stored.ViewedAt.Unix(), "later views must not move the timestamp")
	})

	t.Run("unknown token returns not found", func(t *testing.T) {
		_, err := svc.ViewByToken(ctx, "deadbeef")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("accepting records the decision once", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "public-accept@example.com")
		_, err := svc.Send(ctx, draft.ID)
		require.NoError(t, err)

		decided, err := svc.DecideByToken(ctx, draft.PublicToken, &domain.DecideProposalRequest{
			Status: domain.ProposalAccepted,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProposalAccepted, decided.Status)

		var stored domain.Proposal
		require.NoError(t, db.First(&stored, "id = ?", draft.ID).Error)
		assert.NotNil(t, stored.DecidedAt)
		assert.NotNil(t, stored.ViewedAt, "deciding without viewing still stamps viewed_at")

		_, err = svc.DecideByToken(ctx, draft.PublicToken, &domain.DecideProposalRequest{
			Status: domain.ProposalRejected,
		})
		assert.ErrorIs(t, err, service.ErrProposalDecided)
	})

	t.Run("decision must be accepted or rejected", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "public-decision@example.com")
		_, err := svc.Send(ctx, draft.ID)
		require.NoError(t, err)

		_, err = svc.DecideByToken(ctx, draft.PublicToken, &domain.DecideProposalRequest{
			Status: domain.ProposalExpired,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestProposalService_Delete(t *testing.T) {
	db := setupTestDB(t)
	svc := createProposalService(db)
	ctx := testContext()

	t.Run("drafts can be deleted", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "delete-draft@example.com")

		require.NoError(t, svc.Delete(ctx, draft.ID))

		_, err := svc.GetByID(ctx, draft.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("accepted proposals cannot be deleted", func(t *testing.T) {
		draft := createDraftProposal(t, svc, db, "delete-accepted@example.com")
		_, err := svc.Send(ctx, draft.ID)
		require.NoError(t, err)
		_, err = svc.DecideByToken(ctx, draft.PublicToken, &domain.DecideProposalRequest{
			Status: domain.ProposalAccepted,
		})
		require.NoError(t, err)

		err = svc.Delete(ctx, draft.ID)
		assert.ErrorIs(t, err, service.ErrProposalDecided)
	})
}

func TestProposalService_ExpireOverdue(t *testing.T) {
	db := setupTestDB(t)
	svc := createProposalService(db)
	ctx := testContext()

	lead := createTestLead(t, db, "expiry@example.com")
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	overdue, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title: "Overdue", LeadID: lead.ID, ExpiresAt: &past,
	})
	require.NoError(t, err)
	_, err = svc.Send(ctx, overdue.ID)
	require.NoError(t, err)

	current, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title: "Current", LeadID: lead.ID, ExpiresAt: &future,
	})
	require.NoError(t, err)
	_, err = svc.Send(ctx, current.ID)
	require.NoError(t, err)

	// Drafts are never expired, no matter the date
	_, err = svc.Create(ctx, &domain.CreateProposalRequest{
		Title: "Stale draft", LeadID: lead.ID, ExpiresAt: &past,
	})
	require.NoError(t, err)

	expired, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	var stored domain.Proposal
	require.NoError(t, db.First(&stored, "id = ?", overdue.ID).Error)
	assert.Equal(t, domain.ProposalExpired, stored.Status)

	var storedCurrent domain.Proposal
	require.NoError(t, db.First(&storedCurrent, "id = ?", current.ID).Error)
	assert.Equal(t, domain.ProposalSent, storedCurrent.Status)
}
