package service_test

import (
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

func createProjectService(db *gorm.DB) *service.ProjectService {
	return service.NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewLeadRepository(db),
		zap.NewNop(),
	)
}

func TestProjectService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := createProjectService(db)

	lead := createTestLead(t, db, "project@example.com")

	t.Run("defaults to planning", func(t *testing.T) {
		project, err := svc.Create(testContext(), &domain.CreateProjectRequest{
			Name:   "Website redesign",
			LeadID: lead.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectPlanning, project.Status)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := svc.Create(testContext(), &domain.CreateProjectRequest{
			Name:   "Bad status",
			LeadID: lead.ID,
			Status: domain.ProjectStatus("someday"),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects unknown lead", func(t *testing.T) {
		_, err := svc.Create(testContext(), &domain.CreateProjectRequest{
			Name:   "Orphan",
			LeadID: uuid.New(),
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestProjectService_ToggleMilestone(t *testing.T) {
	db := setupTestDB(t)
	svc := createProjectService(db)

	lead := createTestLead(t, db, "milestones@example.com")
	project, err := svc.Create(testContext(), &domain.CreateProjectRequest{
		Name:   "Launch plan",
		LeadID: lead.ID,
		Milestones: []domain.Milestone{
			{Title: "Design approved", Status: domain.MilestonePending},
			{Title: "Content delivered", Status: domain.MilestonePending},
		},
	})
	require.NoError(t, err)

	t.Run("completes a pending milestone", func(t *testing.T) {
		updated, err := svc.ToggleMilestone(testContext(), project.ID, 1)
		require.NoError(t, err)

		assert.Equal(t, domain.MilestoneCompleted, updated.Milestones[1].Status)
		assert.NotNil(t, updated.Milestones[1].CompletedAt)
		assert.Equal(t, domain.MilestonePending, updated.Milestones[0].Status, "other milestones untouched")
	})

	t.Run("reverts a completed milestone", func(t *testing.T) {
		updated, err := svc.ToggleMilestone(testContext(), project.ID, 1)
		require.NoError(t, err)

		assert.Equal(t, domain.MilestonePending, updated.Milestones[1].Status)
		assert.Nil(t, updated.Milestones[1].CompletedAt)
	})

	t.Run("persists across reloads", func(t *testing.T) {
		_, err := svc.ToggleMilestone(testContext(), project.ID, 0)
		require.NoError(t, err)

		reloaded, err := svc.GetByID(testContext(), project.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MilestoneCompleted, reloaded.Milestones[0].Status)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := svc.ToggleMilestone(testContext(), project.ID, 2)
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		_, err = svc.ToggleMilestone(testContext(), project.ID, -1)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.ToggleMilestone(testContext(), uuid.New(), 0)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
