// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/requestid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for rejected credentials and roles.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for mutations of church records.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Actor is who performed an admin action.
type Actor struct {
	ChurchID primitive.ObjectID
	UserID   primitive.ObjectID
	Role     string
}

// Target is the record an admin action touched.
type Target struct {
	Kind string // "branch", "department", ...
	ID   primitive.ObjectID
}

// Logger writes audit events to MongoDB (via audit.Store) and/or zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP is the host part of RemoteAddr (rewritten by
// middleware.RealIP when proxy headers are trusted).
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ChurchID != nil {
		fields = append(fields, zap.String("church_id", event.ChurchID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_kind", event.TargetKind), zap.String("target_id", event.TargetID.Hex()))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration. A nil Logger is a
// no-op so handlers and tests may run without auditing.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// AccessDenied records a request the guard turned away.
func (l *Logger) AccessDenied(ctx context.Context, r *http.Request, status int, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventAccessDenied,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		RequestID:     requestid.From(r.Context()),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(status),
		},
	})
}

// Admin records a successful mutation of a church record.
func (l *Logger) Admin(ctx context.Context, r *http.Request, actor Actor, eventType string, target Target, details map[string]string) {
	churchID, userID := actor.ChurchID, actor.UserID
	ev := audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		ChurchID:   &churchID,
		ActorID:    &userID,
		ActorRole:  actor.Role,
		TargetKind: target.Kind,
		IP:         getClientIP(r),
		UserAgent:  r.UserAgent(),
		RequestID:  requestid.From(r.Context()),
		Success:    true,
		Details:    details,
	}
	if !target.ID.IsZero() {
		id := target.ID
		ev.TargetID = &id
	}
	l.Log(ctx, ev)
}
