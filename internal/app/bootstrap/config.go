// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// minJWTSecret is the shortest signing secret accepted in prod.
const minJWTSecret = 32

// appConfigKeys defines the configuration keys for churchhub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CHURCHHUB_MONGO_URI, CHURCHHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "churchhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer token verification
	{Name: "jwt_secret", Default: "dev-only-jwt-secret-change-me-0123456789", Desc: "HMAC secret shared with the auth service"},
	{Name: "jwt_issuer", Default: "", Desc: "Expected token issuer (blank accepts any)"},

	// Cookie sessions
	{Name: "session_key", Default: "", Desc: "Session signing key (required in prod; random per process otherwise)"},
	{Name: "session_name", Default: "churchhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "audit_retention_days", Default: 365, Desc: "Days of audit events to keep (0 keeps everything)"},

	// Request rate limiting
	{Name: "rate_limit_per_minute", Default: 300, Desc: "Requests per client IP per minute (0 disables)"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Use X-Forwarded-For/X-Real-IP as the client IP (only behind a trusted proxy)"},

	// Database deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for reports and exports"},

	// Pagination
	{Name: "default_page_limit", Default: 20, Desc: "Page size when ?limit is absent"},
	{Name: "max_page_limit", Default: 100, Desc: "Largest accepted ?limit"},

	// Development bootstrap
	{Name: "seed_church_id", Default: "", Desc: "Church id for the seeded admin account"},
	{Name: "seed_admin_email", Default: "", Desc: "Email of an admin account to ensure on startup"},
	{Name: "seed_admin_name", Default: "Church Admin", Desc: "Full name of the seeded admin account"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CHURCHHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CHURCHHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		AuditRetentionDays: appValues.Int("audit_retention_days"),
		RateLimitPerMinute: appValues.Int("rate_limit_per_minute"),
		TrustProxyHeaders:  appValues.Bool("trust_proxy_headers"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),

		DefaultPageLimit: appValues.Int("default_page_limit"),
		MaxPageLimit:     appValues.Int("max_page_limit"),

		SeedChurchID:   appValues.String("seed_church_id"),
		SeedAdminEmail: appValues.String("seed_admin_email"),
		SeedAdminName:  appValues.String("seed_admin_name"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here to catch configuration errors before
// attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env, appCfg)
}

func validateApp(env string, appCfg AppConfig) error {
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if env == "prod" && len(appCfg.JWTSecret) < minJWTSecret {
		return fmt.Errorf("jwt_secret must be at least %d characters in prod", minJWTSecret)
	}
	if env == "prod" && appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required in prod")
	}
	for name, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch v {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", name, v)
		}
	}
	if appCfg.AuditRetentionDays < 0 || appCfg.RateLimitPerMinute < 0 {
		return fmt.Errorf("audit_retention_days and rate_limit_per_minute must not be negative")
	}
	if appCfg.MaxPageLimit > 0 && appCfg.DefaultPageLimit > appCfg.MaxPageLimit {
		return fmt.Errorf("default_page_limit (%d) exceeds max_page_limit (%d)", appCfg.DefaultPageLimit, appCfg.MaxPageLimit)
	}
	if appCfg.SeedAdminEmail != "" {
		if _, err := primitive.ObjectIDFromHex(appCfg.SeedChurchID); err != nil {
			return fmt.Errorf("seed_admin_email requires a valid seed_church_id")
		}
	}
	return nil
}
