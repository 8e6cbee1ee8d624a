// internal/app/features/branches/handler.go
package branches

import (
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/activities"
	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	branchstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/branches"
	schedulestore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/schedules"
	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns branch, service schedule and branch activity endpoints.
type Handler struct {
	DB         *mongo.Database
	Store      *branchstore.Store
	Schedules  *schedulestore.Store
	Activities *activitystore.Store
	Users      *userstore.Store
	Audit      *auditlog.Logger
	Log        *zap.Logger

	activities *activities.Handler
}

// NewHandler constructs a branches Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	h := &Handler{
		DB:         db,
		Store:      branchstore.New(db),
		Schedules:  schedulestore.New(db),
		Activities: activitystore.New(db),
		Users:      userstore.New(db),
		Audit:      audit,
		Log:        logger,
	}
	h.activities = activities.NewHandler(db, h.activityParent, audit, logger)
	return h
}

// ActivityHandler serves /church/branches/{branchId}/activities.
func (h *Handler) ActivityHandler() *activities.Handler { return h.activities }
