// internal/app/features/groups/parent.go
package groups

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/goals"
	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	groupstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/groups"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// loadGroup resolves {groupId} within the caller's church. Branch admins are
// kept to their branch and non-staff callers to groups they belong to or
// lead; anything else reads as missing.
func (h *Handler) loadGroup(ctx context.Context, r *http.Request, scope authz.Scope) (models.Group, error) {
	id, err := inputval.ParseObjectID(chi.URLParam(r, "groupId"), "group")
	if err != nil {
		return models.Group{}, err
	}
	g, err := h.Store.GetByID(ctx, scope.ChurchID, id)
	if errors.Is(err, groupstore.ErrNotFound) {
		return g, apierr.NotFound("group")
	}
	if err != nil {
		return g, err
	}
	if !canSee(scope, g) {
		return models.Group{}, apierr.NotFound("group")
	}
	return g, nil
}

func canSee(scope authz.Scope, g models.Group) bool {
	switch {
	case scope.BranchRestricted():
		return g.BranchID != nil && scope.CanAccessBranch(*g.BranchID)
	case scope.IsStaff():
		return true
	}
	return isMember(g, scope.UserID)
}

func isMember(g models.Group, user primitive.ObjectID) bool {
	if g.LeaderID != nil && *g.LeaderID == user {
		return true
	}
	for _, m := range g.Members {
		if m == user {
			return true
		}
	}
	return false
}

func (h *Handler) goalParent(ctx context.Context, r *http.Request, scope authz.Scope) (goals.Parent, error) {
	g, err := h.loadGroup(ctx, r, scope)
	if err != nil {
		return goals.Parent{}, err
	}
	return goals.Parent{
		Kind:  "group",
		ID:    g.ID,
		Goals: g.Goals,
		Save: func(ctx context.Context, gs []models.Goal) error {
			g.Goals = gs
			return h.Store.Save(ctx, &g)
		},
	}, nil
}

func (h *Handler) activityParent(ctx context.Context, r *http.Request, scope authz.Scope) (activitystore.Owner, error) {
	g, err := h.loadGroup(ctx, r, scope)
	if err != nil {
		return activitystore.Owner{}, err
	}
	return activitystore.GroupOwner(g.ID), nil
}
