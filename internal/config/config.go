package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Auth         AuthConfig
	ApiKey       ApiKeyConfig
	Logging      LoggingConfig
	Server       ServerConfig
	CORS         CORSConfig
	Security     SecurityConfig
	RateLimit    RateLimitConfig
	Monitor      MonitorConfig
	Integrations IntegrationsConfig
	Jobs         JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// PublicBaseURL is used when building proposal links in outbound emails
	PublicBaseURL string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// AuthConfig holds JWT session configuration.
// AdminEmails is the allow-list of people who may log in at all.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
	AdminEmails     []string
}

// IsAdmin checks an email against the allow-list, case-insensitively
func (a *AuthConfig) IsAdmin(email string) bool {
	for _, admin := range a.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}

// TokenTTL returns the session token lifetime as a duration
func (a *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

type ApiKeyConfig struct {
	Value string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins []string
	// AllowedMethods is a list of allowed HTTP methods
	AllowedMethods []string
	// AllowedHeaders is a list of allowed request headers
	AllowedHeaders []string
	// ExposedHeaders is a list of headers exposed to the client
	ExposedHeaders []string
	// AllowCredentials indicates whether credentials are allowed
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	// EnableHSTS enables HTTP Strict Transport Security header
	EnableHSTS bool
	// HSTSMaxAge is the max age for HSTS in seconds (default: 31536000 = 1 year)
	HSTSMaxAge int
	// HSTSIncludeSubdomains includes subdomains in HSTS
	HSTSIncludeSubdomains bool
	// HSTSPreload enables HSTS preload
	HSTSPreload bool
	// ContentSecurityPolicy sets the Content-Security-Policy header
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions string
	// ContentTypeNosniff enables X-Content-Type-Options: nosniff
	ContentTypeNosniff bool
	// XSSProtection sets the X-XSS-Protection header
	XSSProtection string
	// ReferrerPolicy sets the Referrer-Policy header
	ReferrerPolicy string
	// PermissionsPolicy sets the Permissions-Policy header
	PermissionsPolicy string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting (e.g., /health)
	WhitelistPaths []string
}

// MonitorConfig holds health check runner configuration
type MonitorConfig struct {
	// CheckTimeout is the outbound probe timeout in seconds
	CheckTimeout int
	// DegradedThresholdMS forces degraded status above this response time
	DegradedThresholdMS int64
	// SSLExpiryWarningDays opens an incident when a cert expires this soon
	SSLExpiryWarningDays int
	// SweepSchedule is the cron expression for the periodic sweep
	SweepSchedule string
}

// CheckTimeoutDuration returns the probe timeout as duration
func (m *MonitorConfig) CheckTimeoutDuration() time.Duration {
	return time.Duration(m.CheckTimeout) * time.Second
}

// IntegrationsConfig holds API keys for outbound collaborators.
// Empty values disable the integration; callers degrade to no-ops.
type IntegrationsConfig struct {
	StripeAPIKey      string
	HubSpotToken      string
	ResendAPIKey      string
	ResendFromAddress string
	AnthropicAPIKey   string
	DiscordWebhookURL string
	SlackWebhookURL   string
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	Enabled             bool
	HubSpotSyncSchedule string
	// HubSpotFreshnessMinutes skips re-sync for leads synced this recently
	HubSpotFreshnessMinutes int
	ProposalExpirySchedule  string
}

// HubSpotFreshness returns the skip window as a duration
func (j *JobsConfig) HubSpotFreshness() time.Duration {
	return time.Duration(j.HubSpotFreshnessMinutes) * time.Minute
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets come from environment only, never from the config file
	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if len(cfg.Auth.AdminEmails) == 0 {
		if raw := v.GetString("ADMIN_EMAILS"); raw != "" {
			cfg.Auth.AdminEmails = strings.Split(raw, ",")
		}
	}
	if cfg.Integrations.StripeAPIKey == "" {
		cfg.Integrations.StripeAPIKey = v.GetString("STRIPE_API_KEY")
	}
	if cfg.Integrations.HubSpotToken == "" {
		cfg.Integrations.HubSpotToken = v.GetString("HUBSPOT_TOKEN")
	}
	if cfg.Integrations.ResendAPIKey == "" {
		cfg.Integrations.ResendAPIKey = v.GetString("RESEND_API_KEY")
	}
	if cfg.Integrations.ResendFromAddress == "" {
		cfg.Integrations.ResendFromAddress = v.GetString("RESEND_FROM_ADDRESS")
	}
	if cfg.Integrations.AnthropicAPIKey == "" {
		cfg.Integrations.AnthropicAPIKey = v.GetString("ANTHROPIC_API_KEY")
	}
	if cfg.Integrations.DiscordWebhookURL == "" {
		cfg.Integrations.DiscordWebhookURL = v.GetString("DISCORD_WEBHOOK_URL")
	}
	if cfg.Integrations.SlackWebhookURL == "" {
		cfg.Integrations.SlackWebhookURL = v.GetString("SLACK_WEBHOOK_URL")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Agency Admin API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.publicBaseURL", "http://localhost:8080")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "agency")
	v.SetDefault("database.user", "agency_user")
	v.SetDefault("database.password", "agency_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Auth defaults
	v.SetDefault("auth.tokenTTLMinutes", 720) // 12 hours

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	// In development, you may want to override with specific origins
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300) // 5 minutes

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)    // Disabled by default, enable in production with HTTPS
	v.SetDefault("security.hstsMaxAge", 31536000) // 1 year
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// Monitor defaults
	v.SetDefault("monitor.checkTimeout", 30)
	v.SetDefault("monitor.degradedThresholdMS", 5000)
	v.SetDefault("monitor.sslExpiryWarningDays", 14)
	v.SetDefault("monitor.sweepSchedule", "0 */5 * * * *") // every 5 minutes

	// Background job defaults
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.hubSpotSyncSchedule", "0 15 * * * *") // hourly at :15
	v.SetDefault("jobs.hubSpotFreshnessMinutes", 60)
	v.SetDefault("jobs.proposalExpirySchedule", "0 0 6 * * *") // daily 06:00
}
