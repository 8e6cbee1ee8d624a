// internal/app/features/goals/handler.go
package goals

import (
	"context"
	"net/http"
	"time"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Parent is the group or department whose embedded goals a request works on.
type Parent struct {
	Kind  string // "group" or "department"
	ID    primitive.ObjectID
	Goals []models.Goal

	// Save stores goals on the parent with its version check and returns
	// txn.ErrVersionConflict when the parent changed since it was loaded.
	Save func(ctx context.Context, goals []models.Goal) error
}

// ParentFunc loads the parent addressed by the request. It must answer
// apierr.NotFound when the parent is outside the caller's church or branch.
type ParentFunc func(ctx context.Context, r *http.Request, scope authz.Scope) (Parent, error)

// Handler serves the goal endpoints of one kind of parent.
type Handler struct {
	Users  *userstore.Store
	Parent ParentFunc
	Audit  *auditlog.Logger
	Log    *zap.Logger

	now func() time.Time
}

// NewHandler constructs a goals Handler for the given parent kind.
func NewHandler(db *mongo.Database, parent ParentFunc, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Parent: parent,
		Audit:  audit,
		Log:    logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}
