package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/visionary-advance/agency-api/internal/auth"
	"github.com/visionary-advance/agency-api/internal/config"
	"github.com/visionary-advance/agency-api/internal/database"
	"github.com/visionary-advance/agency-api/internal/http/handler"
	"github.com/visionary-advance/agency-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/visionary-advance/agency-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	leadHandler         *handler.LeadHandler
	activityHandler     *handler.ActivityHandler
	businessHandler     *handler.BusinessHandler
	projectHandler      *handler.ProjectHandler
	proposalHandler     *handler.ProposalHandler
	siteHandler         *handler.SiteHandler
	incidentHandler     *handler.IncidentHandler
	notificationHandler *handler.NotificationHandler
	billingHandler      *handler.BillingHandler
	seoHandler          *handler.SEOHandler
	dashboardHandler    *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	leadHandler *handler.LeadHandler,
	activityHandler *handler.ActivityHandler,
	businessHandler *handler.BusinessHandler,
	projectHandler *handler.ProjectHandler,
	proposalHandler *handler.ProposalHandler,
	siteHandler *handler.SiteHandler,
	incidentHandler *handler.IncidentHandler,
	notificationHandler *handler.NotificationHandler,
	billingHandler *handler.BillingHandler,
	seoHandler *handler.SEOHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		leadHandler:         leadHandler,
		activityHandler:     activityHandler,
		businessHandler:     businessHandler,
		projectHandler:      projectHandler,
		proposalHandler:     proposalHandler,
		siteHandler:         siteHandler,
		incidentHandler:     incidentHandler,
		notificationHandler: notificationHandler,
		billingHandler:      billingHandler,
		seoHandler:          seoHandler,
		dashboardHandler:    dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.Stats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		status := "healthy"
		code := http.StatusOK

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Public proposal pages: the token is the credential
	r.Route("/p/{token}", func(r chi.Router) {
		r.Get("/", rt.proposalHandler.PublicView)
		r.Post("/decision", rt.proposalHandler.PublicDecide)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public intake endpoint for website forms and audit tools;
		// rate limiting above is the only gate
		r.Post("/intake", rt.leadHandler.Intake)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Post("/auth/login", rt.authHandler.Login)
			r.Get("/auth/me", rt.authHandler.Me)

			// Dashboard
			r.Get("/dashboard", rt.dashboardHandler.Overview)

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Post("/", rt.leadHandler.Intake)
				r.Get("/pipeline", rt.leadHandler.Pipeline)
				r.Get("/search", rt.leadHandler.Search)
				r.Get("/{id}", rt.leadHandler.GetByID)
				r.Put("/{id}", rt.leadHandler.Update)
				r.Put("/{id}/stage", rt.leadHandler.UpdateStage)
				r.Get("/{id}/activities", rt.leadHandler.ListActivities)
				r.Post("/{id}/activities", rt.leadHandler.CreateActivity)
				r.Get("/{id}/invoices", rt.billingHandler.ListLeadInvoices)
				r.Post("/{id}/invoices/{invoiceId}/refresh", rt.billingHandler.RefreshInvoice)
			})

			// Activities
			r.Route("/activities", func(r chi.Router) {
				r.Get("/recent", rt.activityHandler.ListRecent)
				r.Put("/{id}/pin", rt.activityHandler.TogglePin)
			})

			// Businesses
			r.Route("/businesses", func(r chi.Router) {
				r.Get("/", rt.businessHandler.List)
				r.Post("/", rt.businessHandler.Create)
				r.Get("/{id}", rt.businessHandler.GetByID)
				r.Put("/{id}", rt.businessHandler.Update)
				r.Delete("/{id}", rt.businessHandler.Delete)
			})

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Post("/", rt.projectHandler.Create)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.Put("/{id}", rt.projectHandler.Update)
				r.Put("/{id}/milestones/{index}", rt.projectHandler.ToggleMilestone)
				r.Delete("/{id}", rt.projectHandler.Delete)
			})

			// Proposals
			r.Route("/proposals", func(r chi.Router) {
				r.Get("/", rt.proposalHandler.List)
				r.Post("/", rt.proposalHandler.Create)
				r.Get("/{id}", rt.proposalHandler.GetByID)
				r.Put("/{id}", rt.proposalHandler.Update)
				r.Delete("/{id}", rt.proposalHandler.Delete)
				r.Post("/{id}/send", rt.proposalHandler.Send)
			})

			// Sites
			r.Route("/sites", func(r chi.Router) {
				r.Get("/", rt.siteHandler.List)
				r.Post("/", rt.siteHandler.Create)
				r.Get("/{id}", rt.siteHandler.GetByID)
				r.Put("/{id}", rt.siteHandler.Update)
				r.Delete("/{id}", rt.siteHandler.Delete)
				r.Post("/{id}/check", rt.siteHandler.RunCheck)
				r.Get("/{id}/checks", rt.siteHandler.HealthHistory)
				r.Get("/{id}/seo-reports", rt.seoHandler.ListBySite)
			})

			// Incidents
			r.Route("/incidents", func(r chi.Router) {
				r.Get("/", rt.incidentHandler.List)
				r.Get("/{id}", rt.incidentHandler.GetByID)
				r.Put("/{id}/status", rt.incidentHandler.UpdateStatus)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/unread-count", rt.notificationHandler.UnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
			})

			// Billing
			r.Route("/billing", func(r chi.Router) {
				r.Get("/invoices", rt.billingHandler.ListInvoices)
				r.Post("/invoices", rt.billingHandler.CreateInvoice)
			})

			// SEO reports
			r.Route("/seo/reports", func(r chi.Router) {
				r.Post("/", rt.seoHandler.Generate)
				r.Get("/{id}", rt.seoHandler.GetByID)
				r.Delete("/{id}", rt.seoHandler.Delete)
			})
		})
	})

	return r
}
