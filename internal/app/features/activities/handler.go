// internal/app/features/activities/handler.go
package activities

import (
	"context"
	"net/http"

	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ParentFunc resolves the branch, group or department an activity request is
// addressed to. It must answer apierr.NotFound when the parent is outside the
// caller's church or branch.
type ParentFunc func(ctx context.Context, r *http.Request, scope authz.Scope) (activitystore.Owner, error)

// Handler serves activities and their attendance for one kind of parent.
type Handler struct {
	DB     *mongo.Database
	Store  *activitystore.Store
	Users  *userstore.Store
	Parent ParentFunc
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs an activities Handler for the given parent kind.
func NewHandler(db *mongo.Database, parent ParentFunc, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Store:  activitystore.New(db),
		Users:  userstore.New(db),
		Parent: parent,
		Audit:  audit,
		Log:    logger,
	}
}
