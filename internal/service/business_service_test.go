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

func createBusinessService(db *gorm.DB) *service.BusinessService {
	return service.NewBusinessService(repository.NewBusinessRepository(db), zap.NewNop())
}

func TestBusinessService_Counts(t *testing.T) {
	db := setupTestDB(t)
	svc := createBusinessService(db)

	business, err := svc.Create(testContext(), &domain.CreateBusinessRequest{
		Name:     "Fjord Web AS",
		Industry: "General Contractors",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), business.LeadCount)
	assert.Equal(t, int64(0), business.SiteCount)

	for _, email := range []string{"one@fjord.example", "two@fjord.example"} {
		lead := createTestLead(t, db, email)
		require.NoError(t, db.Model(lead).Update("business_id", business.ID).Error)
	}
	site := createTestSite(t, db, "fjord", "https://fjord.example.com/health")
	require.NoError(t, db.Model(site).Update("business_id", business.ID).Error)

	t.Run("get decorates with relation counts", func(t *testing.T) {
		fetched, err := svc.GetByID(testContext(), business.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), fetched.LeadCount)
		assert.Equal(t, int64(1), fetched.SiteCount)
	})

	t.Run("list decorates every row", func(t *testing.T) {
		result, err := svc.List(testContext(), 1, 10, "")
		require.NoError(t, err)

		rows, ok := result.Data.([]domain.BusinessDTO)
		require.True(t, ok)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(2), rows[0].LeadCount)
	})

	t.Run("update keeps the counts", func(t *testing.T) {
		updated, err := svc.Update(testContext(), business.ID, &domain.UpdateBusinessRequest{
			Name:     "Fjord Web AS",
			Industry: "Web Agencies",
		})
		require.NoError(t, err)
		assert.Equal(t, "Web Agencies", updated.Industry)
		assert.Equal(t, int64(2), updated.LeadCount)
		assert.Equal(t, int64(1), updated.SiteCount)
	})

	t.Run("unknown business", func(t *testing.T) {
		_, err := svc.GetByID(testContext(), uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
