package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/notify"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createLeadService(db *gorm.DB) *service.LeadService {
	return service.NewLeadService(
		repository.NewLeadRepository(db),
		repository.NewActivityRepository(db),
		repository.NewProjectRepository(db),
		repository.NewProposalRepository(db),
		repository.NewNotificationRepository(db),
		notify.NewNotifier(zap.NewNop()),
		zap.NewNop(),
	)
}

func TestLeadService_Intake(t *testing.T) {
	db := setupTestDB(t)
	svc := createLeadService(db)
	ctx := testContext()

	t.Run("new lead is created with score and contact stage", func(t *testing.T) {
		dto, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:  "new@example.com",
			Name:   "New Lead",
			Source: domain.SourceContactForm,
		})

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", dto.Email)
		assert.Equal(t, domain.StageContact, dto.Stage)
		assert.False(t, dto.IsClient)
		require.NotNil(t, dto.Score)
		assert.Equal(t, 31, *dto.Score)
		require.NotNil(t, dto.ScoreBreakdown)
		assert.Equal(t, 40, dto.ScoreBreakdown.Needs)
	})

	t.Run("intake records a form submission activity", func(t *testing.T) {
		dto, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:   "logged@example.com",
			Source:  domain.SourceSystemsForm,
			Message: "please call me",
		})
		require.NoError(t, err)

		var activities []domain.Activity
		require.NoError(t, db.Where("lead_id = ?", dto.ID).Find(&activities).Error)
		require.Len(t, activities, 1)
		assert.Equal(t, domain.ActivityFormSubmission, activities[0].Type)
		assert.Equal(t, "please call me", activities[0].Metadata["message"])
		assert.Equal(t, true, activities[0].Metadata["new"])
	})

	t.Run("duplicate email merges instead of creating", func(t *testing.T) {
		first, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:       "dedupe@example.com",
			Name:        "First",
			Services:    []string{"web"},
			Source:      domain.SourceContactForm,
			BudgetRange: "3k",
		})
		require.NoError(t, err)

		second, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:       "  DEDUPE@example.com ",
			Company:     "Acme AS",
			Services:    []string{"web", "seo"},
			Source:      domain.SourceSystemsForm,
			BudgetRange: "$10k",
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "First", second.Name, "merge must keep fields the new submission omits")
		assert.Equal(t, "Acme AS", second.Company)
		assert.ElementsMatch(t, []string{"web", "seo"}, second.Services)

		var count int64
		require.NoError(t, db.Model(&domain.Lead{}).Where("email = ?", "dedupe@example.com").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("merged score never decreases", func(t *testing.T) {
		strong, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:       "downgrade@example.com",
			Company:     "Bergen Construction",
			Source:      domain.SourceSystemsForm,
			BudgetRange: "$15k",
			Timeline:    "ASAP",
		})
		require.NoError(t, err)
		require.NotNil(t, strong.Score)
		strongScore := *strong.Score

		weak, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:  "downgrade@example.com",
			Source: domain.SourceContactForm,
		})
		require.NoError(t, err)
		require.NotNil(t, weak.Score)
		assert.GreaterOrEqual(t, *weak.Score, strongScore)
	})

	t.Run("empty email is rejected", func(t *testing.T) {
		_, err := svc.Intake(ctx, &domain.LeadIntakeRequest{Email: "   "})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown source is rejected", func(t *testing.T) {
		_, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:  "bad-source@example.com",
			Source: domain.LeadSource("carrier_pigeon"),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("missing source falls back to manual", func(t *testing.T) {
		dto, err := svc.Intake(ctx, &domain.LeadIntakeRequest{Email: "nosource@example.com"})
		require.NoError(t, err)
		require.NotNil(t, dto.Source)
		assert.Equal(t, domain.SourceManual, *dto.Source)
	})

	t.Run("a converted client stays unscored on repeat submission", func(t *testing.T) {
		first, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:  "comeback@example.com",
			Name:   "Comeback Client",
			Source: domain.SourceSystemsForm,
		})
		require.NoError(t, err)

		_, err = svc.UpdateStage(ctx, first.ID, &domain.UpdateLeadStageRequest{Stage: domain.StageWon})
		require.NoError(t, err)

		again, err := svc.Intake(ctx, &domain.LeadIntakeRequest{
			Email:       "comeback@example.com",
			Source:      domain.SourceContactForm,
			BudgetRange: "$15k",
			Timeline:    "ASAP",
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, again.ID)
		assert.True(t, again.IsClient)
		assert.Nil(t, again.Source)
		assert.Nil(t, again.Score)
		assert.Nil(t, again.ScoreBreakdown)

		var reloaded domain.Lead
		require.NoError(t, db.First(&reloaded, "id = ?", first.ID).Error)
		assert.Nil(t, reloaded.Source)
		assert.Nil(t, reloaded.Score)
		assert.Nil(t, reloaded.ScoreBreakdown)
	})
}

func TestLeadService_UpdateStage(t *testing.T) {
	db := setupTestDB(t)
	svc := createLeadService(db)
	ctx := testContext()

	t.Run("invalid stage is rejected", func(t *testing.T) {
		lead := createTestLead(t, db, "stage-invalid@example.com")
		_, err := svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{Stage: "Won"})
		assert.ErrorIs(t, err, service.ErrInvalidStage)
	})

	t.Run("unknown lead returns not found", func(t *testing.T) {
		_, err := svc.UpdateStage(ctx, uuid.New(), &domain.UpdateLeadStageRequest{Stage: domain.StageOffer})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("same stage is an idempotent no-op", func(t *testing.T) {
		lead := createTestLead(t, db, "stage-noop@example.com")

		dto, err := svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{Stage: domain.StageContact})
		require.NoError(t, err)
		assert.Equal(t, domain.StageContact, dto.Stage)

		var activities []domain.Activity
		require.NoError(t, db.Where("lead_id = ?", lead.ID).Find(&activities).Error)
		assert.Empty(t, activities, "a no-op must not write a stage change activity")
	})

	t.Run("stage change records an activity with both stages", func(t *testing.T) {
		lead := createTestLead(t, db, "stage-log@example.com")

		_, err := svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{
			Stage: domain.StageDiscoveryCall,
			Notes: "booked for friday",
		})
		require.NoError(t, err)

		var activity domain.Activity
		require.NoError(t, db.Where("lead_id = ? AND type = ?", lead.ID, domain.ActivityStageChange).First(&activity).Error)
		assert.Equal(t, "contact", activity.Metadata["previous_stage"])
		assert.Equal(t, "discovery_call", activity.Metadata["new_stage"])
		assert.Equal(t, "Test Admin", activity.ActorName)
	})

	t.Run("backward and skipping moves are allowed", func(t *testing.T) {
		lead := createTestLead(t, db, "stage-jump@example.com")

		dto, err := svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{Stage: domain.StageNegotiating})
		require.NoError(t, err)
		assert.Equal(t, domain.StageNegotiating, dto.Stage)

		dto, err = svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{Stage: domain.StageContact})
		require.NoError(t, err)
		assert.Equal(t, domain.StageContact, dto.Stage)
	})

	t.Run("moving to won converts the lead to a client", func(t *testing.T) {
		score := 75
		source := domain.SourceSystemsForm
		lead := &domain.Lead{
			Email:          "winner@example.com",
			Name:           "Winner",
			Stage:          domain.StageNegotiating,
			Source:         &source,
			Score:          &score,
			ScoreBreakdown: &domain.ScoreBreakdown{Needs: 70},
		}
		require.NoError(t, db.Create(lead).Error)

		dto, err := svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{Stage: domain.StageWon})
		require.NoError(t, err)

		assert.Equal(t, domain.StageWon, dto.Stage)
		assert.True(t, dto.IsClient)
		assert.NotNil(t, dto.ClientSince)
		assert.Nil(t, dto.Score, "conversion must clear the score")
		assert.Nil(t, dto.ScoreBreakdown)
		assert.Nil(t, dto.Source)

		var reloaded domain.Lead
		require.NoError(t, db.First(&reloaded, "id = ?", lead.ID).Error)
		assert.True(t, reloaded.IsClient)
		assert.Nil(t, reloaded.Score)

		var notifications []domain.Notification
		require.NoError(t, db.Where("type = ?", string(domain.NotificationLeadWon)).Find(&notifications).Error)
		require.Len(t, notifications, 1)
		assert.Contains(t, notifications[0].Message, "Winner")
	})

	t.Run("won lead moving again does not reconvert", func(t *testing.T) {
		lead := createTestLead(t, db, "reconvert@example.com")

		_, err := svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{Stage: domain.StageWon})
		require.NoError(t, err)

		var afterFirst domain.Lead
		require.NoError(t, db.First(&afterFirst, "id = ?", lead.ID).Error)
		firstClientSince := afterFirst.ClientSince

		_, err = svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{Stage: domain.StageLost})
		require.NoError(t, err)
		dto, err := svc.UpdateStage(ctx, lead.ID, &domain.UpdateLeadStageRequest{Stage: domain.StageWon})
		require.NoError(t, err)

		assert.True(t, dto.IsClient)
		var reloaded domain.Lead
		require.NoError(t, db.First(&reloaded, "id = ?", lead.ID).Error)
		assert.Equal(t, firstClientSince.Unix(), reloaded.ClientSince.Unix(), "client_since must survive later stage moves")
	})
}

func TestLeadService_Update(t *testing.T) {
	db := setupTestDB(t)
	svc := createLeadService(db)
	ctx := testContext()

	t.Run("updates re-score open leads", func(t *testing.T) {
		lead := createTestLead(t, db, "rescore@example.com")

		dto, err := svc.Update(ctx, lead.ID, &domain.UpdateLeadRequest{
			Company:     "Bergen Construction",
			BudgetRange: "$15k",
			Timeline:    "ASAP",
		})
		require.NoError(t, err)
		require.NotNil(t, dto.Score)
		assert.Greater(t, *dto.Score, 31)
	})

	t.Run("client updates skip scoring", func(t *testing.T) {
		lead := &domain.Lead{
			Email:    "client@example.com",
			Stage:    domain.StageWon,
			IsClient: true,
		}
		require.NoError(t, db.Create(lead).Error)

		dto, err := svc.Update(ctx, lead.ID, &domain.UpdateLeadRequest{BudgetRange: "$20k"})
		require.NoError(t, err)
		assert.Nil(t, dto.Score)
	})
}

func TestLeadService_Search(t *testing.T) {
	db := setupTestDB(t)
	svc := createLeadService(db)
	ctx := testContext()

	createTestLead(t, db, "searchable@example.com")

	results, err := svc.Search(ctx, "searchable", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "searchable@example.com", results[0].Email)

	results, err = svc.Search(ctx, "no-such-lead", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
