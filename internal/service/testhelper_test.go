package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/auth"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an isolated in-memory SQLite database per test
// and migrates the full schema into it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	err = db.AutoMigrate(
		&domain.Business{},
		&domain.Lead{},
		&domain.Activity{},
		&domain.Project{},
		&domain.Proposal{},
		&domain.Site{},
		&domain.HealthCheck{},
		&domain.Incident{},
		&domain.Notification{},
		&domain.StripeCustomer{},
		&domain.StripeInvoice{},
		&domain.SEOReport{},
	)
	require.NoError(t, err, "failed to migrate schema")

	return db
}

// testContext carries an authenticated admin, the way requests arrive
// through the JWT middleware.
func testContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		Email:       "admin@example.com",
		DisplayName: "Test Admin",
	})
}

func createTestLead(t *testing.T, db *gorm.DB, email string) *domain.Lead {
	t.Helper()
	source := domain.SourceManual
	lead := &domain.Lead{
		Email:  email,
		Name:   "Test Lead",
		Source: &source,
		Stage:  domain.StageContact,
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

func createTestSite(t *testing.T, db *gorm.DB, name, healthURL string) *domain.Site {
	t.Helper()
	site := &domain.Site{
		Name:      name,
		URL:       "https://" + name + ".example.com",
		HealthURL: healthURL,
		IsActive:  true,
	}
	require.NoError(t, db.Create(site).Error)
	return site
}
