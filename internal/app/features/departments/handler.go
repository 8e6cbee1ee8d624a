// internal/app/features/departments/handler.go
package departments

import (
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/goals"
	branchstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/branches"
	departmentstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/departments"
	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns department, expense, goal and department activity endpoints.
type Handler struct {
	DB       *mongo.Database
	Store    *departmentstore.Store
	Branches *branchstore.Store
	Users    *userstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger

	goals      *goals.Handler
	activities *activities.Handler
}

// NewHandler constructs a departments Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	h := &Handler{
		DB:       db,
		Store:    departmentstore.New(db),
		Branches: branchstore.New(db),
		Users:    userstore.New(db),
		Audit:    audit,
		Log:      logger,
	}
	h.goals = goals.NewHandler(db, h.goalParent, audit, logger)
	h.activities = activities.NewHandler(db, h.activityParent, audit, logger)
	return h
}
