// internal/app/features/groups/handler.go
package groups

import (
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/goals"
	branchstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/branches"
	groupstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/groups"
	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature: the
// groups themselves, their members, and the goal, activity and report
// endpoints below /church/groups/{groupId}.
type Handler struct {
	DB       *mongo.Database
	Store    *groupstore.Store
	Branches *branchstore.Store
	Users    *userstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger

	goals      *goals.Handler
	activities *activities.Handler
}

// NewHandler constructs a groups Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	h := &Handler{
		DB:       db,
		Store:    groupstore.New(db),
		Branches: branchstore.New(db),
		Users:    userstore.New(db),
		Audit:    audit,
		Log:      logger,
	}
	h.goals = goals.NewHandler(db, h.goalParent, audit, logger)
	h.activities = activities.NewHandler(db, h.activityParent, audit, logger)
	return h
}
