// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the caller's identity.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Users: userstore.New(db), Log: logger}
}

type meData struct {
	UserID   primitive.ObjectID  `json:"userId"`
	ChurchID primitive.ObjectID  `json:"churchId"`
	BranchID *primitive.ObjectID `json:"branchId,omitempty"`
	Role     string              `json:"role"`
	Name     string              `json:"name"`
	// Profile is nil when the token's subject has no user record in this
	// church (accounts are provisioned by the external auth service).
	Profile *models.User `json:"profile,omitempty"`
}

// ServeMe returns the token's claims together with the stored user record.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out := meData{
		UserID:   scope.UserID,
		ChurchID: scope.ChurchID,
		BranchID: scope.BranchID,
		Role:     scope.Role,
		Name:     scope.Name,
	}
	u, err := h.Users.GetByID(ctx, scope.ChurchID, scope.UserID)
	switch {
	case err == nil:
		out.Profile = &u
		if out.Name == "" {
			out.Name = u.FullName
		}
	case errors.Is(err, userstore.ErrNotFound):
	default:
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, out, "User retrieved successfully")
}
