// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (CHURCHHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, log level, CORS and
// request body limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens are issued by the external auth service and verified here.
	JWTSecret string
	JWTIssuer string

	// Browser clients may carry the token in a signed session cookie instead.
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: churchhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Per-operation database deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Audit events older than this many days are pruned hourly (0 keeps all).
	AuditRetentionDays int

	// Requests per client IP per minute (0 disables limiting).
	RateLimitPerMinute int
	// Take the client IP from X-Forwarded-For/X-Real-IP. Enable only behind
	// a proxy that overwrites those headers.
	TrustProxyHeaders bool

	// Pagination
	DefaultPageLimit int
	MaxPageLimit     int

	// Development bootstrap: ensures an admin account exists in the given
	// church and, in dev, logs a bearer token for it.
	SeedChurchID   string
	SeedAdminEmail string
	SeedAdminName  string
}
