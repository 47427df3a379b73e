package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/visionary-advance/agency-api/docs"
	"github.com/visionary-advance/agency-api/internal/auth"
	"github.com/visionary-advance/agency-api/internal/config"
	"github.com/visionary-advance/agency-api/internal/database"
	"github.com/visionary-advance/agency-api/internal/http/handler"
	"github.com/visionary-advance/agency-api/internal/http/middleware"
	"github.com/visionary-advance/agency-api/internal/http/router"
	"github.com/visionary-advance/agency-api/internal/integration/hubspot"
	"github.com/visionary-advance/agency-api/internal/integration/llm"
	"github.com/visionary-advance/agency-api/internal/integration/mail"
	"github.com/visionary-advance/agency-api/internal/integration/stripeclient"
	"github.com/visionary-advance/agency-api/internal/jobs"
	"github.com/visionary-advance/agency-api/internal/logger"
	"github.com/visionary-advance/agency-api/internal/notify"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
)

// @title Agency Admin API
// @version 1.0
// @description CRM and operations API for lead pipeline, proposals, billing, and site health monitoring
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email dev@visionary-advance.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch cfg.App.Environment {
	case "production":
		docs.SwaggerInfo.Host = "admin-api.visionary-advance.com"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize outbound integration clients.
	// Each constructor returns nil when the key is absent and the
	// services degrade to disabled behaviour.
	stripeClient := stripeclient.New(cfg.Integrations.StripeAPIKey)
	hubspotClient := hubspot.New(cfg.Integrations.HubSpotToken)
	mailClient := mail.New(cfg.Integrations.ResendAPIKey, cfg.Integrations.ResendFromAddress)
	llmClient := llm.New(cfg.Integrations.AnthropicAPIKey)

	log.Info("Integrations configured",
		zap.Bool("stripe", stripeClient != nil),
		zap.Bool("hubspot", hubspotClient != nil),
		zap.Bool("mail", mailClient != nil),
		zap.Bool("llm", llmClient != nil),
	)

	// Webhook notifier for pipeline wins and incidents
	var senders []notify.Sender
	if cfg.Integrations.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Integrations.DiscordWebhookURL))
	}
	if cfg.Integrations.SlackWebhookURL != "" {
		senders = append(senders, notify.NewSlackSender(cfg.Integrations.SlackWebhookURL))
	}
	notifier := notify.NewNotifier(log, senders...)

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	businessRepo := repository.NewBusinessRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	healthCheckRepo := repository.NewHealthCheckRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	stripeRepo := repository.NewStripeRepository(db)
	seoRepo := repository.NewSEOReportRepository(db)

	// Initialize services
	leadService := service.NewLeadService(leadRepo, activityRepo, projectRepo, proposalRepo, notificationRepo, notifier, log)
	activityService := service.NewActivityService(activityRepo, leadRepo, log)
	businessService := service.NewBusinessService(businessRepo, log)
	projectService := service.NewProjectService(projectRepo, leadRepo, log)
	proposalService := service.NewProposalService(proposalRepo, leadRepo, activityRepo, mailClient, cfg.App.PublicBaseURL, log)
	siteService := service.NewSiteService(siteRepo, healthCheckRepo, incidentRepo, log)
	monitorService := service.NewMonitorService(siteRepo, healthCheckRepo, incidentRepo, notificationRepo, notifier, cfg.Monitor, log)
	incidentService := service.NewIncidentService(incidentRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	billingService := service.NewBillingService(stripeRepo, leadRepo, stripeClient, log)
	seoService := service.NewSEOService(seoRepo, siteRepo, healthCheckRepo, llmClient, log)
	dashboardService := service.NewDashboardService(leadRepo, projectRepo, proposalRepo, incidentRepo, healthCheckRepo, notificationRepo, log)
	hubspotService := service.NewHubSpotService(leadRepo, activityRepo, hubspotClient, cfg.Jobs.HubSpotFreshness(), log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	tokenIssuer := auth.NewTokenIssuer(&cfg.Auth)
	authHandler := handler.NewAuthHandler(tokenIssuer, log)
	leadHandler := handler.NewLeadHandler(leadService, activityService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	businessHandler := handler.NewBusinessHandler(businessService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	proposalHandler := handler.NewProposalHandler(proposalService, log)
	siteHandler := handler.NewSiteHandler(siteService, monitorService, log)
	incidentHandler := handler.NewIncidentHandler(incidentService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	billingHandler := handler.NewBillingHandler(billingService, log)
	seoHandler := handler.NewSEOHandler(seoService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		leadHandler,
		activityHandler,
		businessHandler,
		projectHandler,
		proposalHandler,
		siteHandler,
		incidentHandler,
		notificationHandler,
		billingHandler,
		seoHandler,
		dashboardHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterHealthSweepJob(
			scheduler,
			monitorService,
			log,
			cfg.Monitor.SweepSchedule,
			5*time.Minute,
		); err != nil {
			log.Error("Failed to register health sweep job", zap.Error(err))
		}

		// HubSpot sync is only worth scheduling when a token is configured
		if hubspotClient != nil {
			if err := jobs.RegisterHubSpotSyncJob(
				scheduler,
				hubspotService,
				log,
				cfg.Jobs.HubSpotSyncSchedule,
				10*time.Minute,
			); err != nil {
				log.Error("Failed to register hubspot sync job", zap.Error(err))
			}
		}

		if err := jobs.RegisterProposalExpiryJob(
			scheduler,
			proposalService,
			log,
			cfg.Jobs.ProposalExpirySchedule,
			2*time.Minute,
		); err != nil {
			log.Error("Failed to register proposal expiry job", zap.Error(err))
		}

		scheduler.Start()
		log.Info("Scheduler started",
			zap.Strings("jobs", scheduler.GetJobNames()),
		)
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
