// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/hex"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	announcementsfeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/announcements"
	auditlogfeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/auditlog"
	branchesfeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/branches"
	contentfeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/content"
	dashboardfeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/dashboard"
	departmentsfeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/departments"
	groupsfeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/groups"
	healthfeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/health"
	userinfofeature "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/userinfo"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/ratelimit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/requestid"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the access guard (bearer
// tokens, with a signed-cookie fallback for browser clients) and mounts the
// feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionKey := appCfg.SessionKey
	if sessionKey == "" {
		// Cookies signed with a per-process key do not survive restarts.
		sessionKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("session_key not set; using a random key for this process")
	}
	sessionStore, err := auth.NewSessionStore(sessionKey, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	guard := auth.NewGuard(auth.NewVerifier(appCfg.JWTSecret, appCfg.JWTIssuer), sessionStore, appCfg.SessionName, logger).
		WithAudit(auditLogger)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	if appCfg.TrustProxyHeaders {
		// rewrites RemoteAddr, which the limiter and audit trail key on
		r.Use(middleware.RealIP)
	}
	if appCfg.RateLimitPerMinute > 0 {
		background.limiter = ratelimit.New(appCfg.RateLimitPerMinute, time.Minute)
		r.Use(ratelimit.Middleware(background.limiter, logger))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusNotFound, respond.Envelope{Success: false, Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusMethodNotAllowed, respond.Envelope{Success: false, Error: "method not allowed"})
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/church", func(cr chi.Router) {
		announcementsHandler := announcementsfeature.NewHandler(db, auditLogger, logger)
		cr.Mount("/announcements", announcementsfeature.Routes(announcementsHandler, guard))

		// Branches carry their service schedules and activities.
		branchesHandler := branchesfeature.NewHandler(db, auditLogger, logger)
		cr.Mount("/branches", branchesfeature.Routes(branchesHandler, guard))

		// Departments carry expenses, goals and activities.
		departmentsHandler := departmentsfeature.NewHandler(db, auditLogger, logger)
		cr.Mount("/departments", departmentsfeature.Routes(departmentsHandler, guard))

		// Groups carry members, goals, activities with attendance, and reports.
		groupsHandler := groupsfeature.NewHandler(db, auditLogger, logger)
		cr.Mount("/groups", groupsfeature.Routes(groupsHandler, guard))

		overviewHandler := dashboardfeature.NewHandler(db, logger)
		cr.Mount("/overview", dashboardfeature.Routes(overviewHandler, guard))

		auditHandler := auditlogfeature.NewHandler(db, logger)
		cr.Mount("/audit-events", auditlogfeature.Routes(auditHandler, guard))
	})

	meHandler := userinfofeature.NewHandler(db, logger)
	r.Mount("/me", userinfofeature.Routes(meHandler, guard))

	contentHandler := contentfeature.NewHandler(db, auditLogger, logger)
	r.Mount("/content", contentfeature.Routes(contentHandler, guard))

	return r, nil
}
