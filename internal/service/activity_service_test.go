package service_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createActivityService(db *gorm.DB) *service.ActivityService {
	return service.NewActivityService(
		repository.NewActivityRepository(db),
		repository.NewLeadRepository(db),
		zap.NewNop(),
	)
}

func createTestActivity(t *testing.T, db *gorm.DB, leadID uuid.UUID, activityType domain.ActivityType) *domain.Activity {
	t.Helper()
	activity := &domain.Activity{
		LeadID: leadID,
		Type:   activityType,
		Title:  "Test activity",
	}
	require.NoError(t, db.Create(activity).Error)
	return activity
}

func TestActivityService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := createActivityService(db)
	ctx := testContext()

	t.Run("creates an activity with the actor from context", func(t *testing.T) {
		lead := createTestLead(t, db, "activity@example.com")

		dto, err := svc.Create(ctx, lead.ID, &domain.CreateActivityRequest{
			Type:        domain.ActivityCall,
			Title:       "Intro call",
			Description: "Talked about the redesign",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ActivityCall, dto.Type)
		assert.Equal(t, "Test Admin", dto.ActorName)
		assert.False(t, dto.Pinned)
	})

	t.Run("rejects unknown activity types", func(t *testing.T) {
		lead := createTestLead(t, db, "activity-type@example.com")

		_, err := svc.Create(ctx, lead.ID, &domain.CreateActivityRequest{
			Type:  domain.ActivityType("telepathy"),
			Title: "Nope",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects unknown leads", func(t *testing.T) {
		_, err := svc.Create(ctx, uuid.New(), &domain.CreateActivityRequest{
			Type:  domain.ActivityNote,
			Title: "Orphan",
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestActivityService_TogglePin(t *testing.T) {
	db := setupTestDB(t)
	svc := createActivityService(db)
	ctx := testContext()

	t.Run("pins a note", func(t *testing.T) {
		lead := createTestLead(t, db, "pin@example.com")
		activity := createTestActivity(t, db, lead.ID, domain.ActivityNote)

		dto, err := svc.TogglePin(ctx, activity.ID, true)

		require.NoError(t, err)
		assert.True(t, dto.Pinned)
		assert.NotNil(t, dto.PinnedAt)
		assert.Equal(t, "Test Admin", dto.PinnedBy)
	})

	t.Run("only notes and email records are pinnable", func(t *testing.T) {
		lead := createTestLead(t, db, "pin-types@example.com")

		for _, pinnable := range []domain.ActivityType{domain.ActivityNote, domain.ActivityEmailSent, domain.ActivityEmailReceived} {
			activity := createTestActivity(t, db, lead.ID, pinnable)
			_, err := svc.TogglePin(ctx, activity.ID, true)
			assert.NoError(t, err, "%s should be pinnable", pinnable)
			_, err = svc.TogglePin(ctx, activity.ID, false)
			assert.NoError(t, err)
		}

		for _, unpinnable := range []domain.ActivityType{domain.ActivityCall, domain.ActivityStageChange, domain.ActivitySystem} {
			activity := createTestActivity(t, db, lead.ID, unpinnable)
			_, err := svc.TogglePin(ctx, activity.ID, true)
			assert.ErrorIs(t, err, service.ErrUnpinnable, "%s should not be pinnable", unpinnable)
		}
	})

	t.Run("same state is an idempotent no-op", func(t *testing.T) {
		lead := createTestLead(t, db, "pin-noop@example.com")
		activity := createTestActivity(t, db, lead.ID, domain.ActivityNote)

		dto, err := svc.TogglePin(ctx, activity.ID, false)
		require.NoError(t, err)
		assert.False(t, dto.Pinned)

		_, err = svc.TogglePin(ctx, activity.ID, true)
		require.NoError(t, err)
		dto, err = svc.TogglePin(ctx, activity.ID, true)
		require.NoError(t, err)
		assert.True(t, dto.Pinned)
	})

	t.Run("unpinning an unpinnable type is allowed", func(t *testing.T) {
		lead := createTestLead(t, db, "pin-unpin@example.com")
		activity := createTestActivity(t, db, lead.ID, domain.ActivityStageChange)

		dto, err := svc.TogglePin(ctx, activity.ID, false)
		require.NoError(t, err)
		assert.False(t, dto.Pinned)
	})

	t.Run("enforces the pin limit per lead", func(t *testing.T) {
		lead := createTestLead(t, db, "pin-limit@example.com")

		for i := 0; i < domain.MaxPinnedPerLead; i++ {
			activity := createTestActivity(t, db, lead.ID, domain.ActivityNote)
			_, err := svc.TogglePin(ctx, activity.ID, true)
			require.NoError(t, err, "pin %d should be under the limit", i+1)
		}

		overflow := createTestActivity(t, db, lead.ID, domain.ActivityNote)
		_, err := svc.TogglePin(ctx, overflow.ID, true)
		assert.ErrorIs(t, err, service.ErrPinLimitExceeded)

		// Unpinning one makes room again
		var pinned domain.Activity
		require.NoError(t, db.Where("lead_id = ? AND pinned = ?", lead.ID, true).First(&pinned).Error)
		_, err = svc.TogglePin(ctx, pinned.ID, false)
		require.NoError(t, err)

		_, err = svc.TogglePin(ctx, overflow.ID, true)
		assert.NoError(t, err)
	})

	t.Run("unknown activity returns not found", func(t *testing.T) {
		_, err := svc.TogglePin(ctx, uuid.New(), true)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestActivityService_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	svc := createActivityService(db)
	ctx := testContext()

	lead := createTestLead(t, db, "recent@example.com")
	for i := 0; i < 5; i++ {
		activity := &domain.Activity{
			LeadID: lead.ID,
			Type:   domain.ActivityNote,
			Title:  fmt.Sprintf("Note %d", i),
		}
		require.NoError(t, db.Create(activity).Error)
	}

	dtos, err := svc.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, dtos, 3)

	// Out-of-range limits fall back to the default
	dtos, err = svc.ListRecent(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, dtos, 5)
}
